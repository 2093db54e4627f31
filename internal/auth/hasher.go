package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used when none is configured.
	// Changing it invalidates every stored hash, so it is fixed per deployment.
	DefaultIterations = 210_000

	// MinIterations is the lowest iteration count a Hasher accepts from configuration.
	MinIterations = 1000

	saltLen = 16
	keyLen  = 32
)

// ErrInvalidArgument is returned by the Hasher for empty inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// Hasher derives password hashes using PBKDF2-HMAC-SHA256.
//
// Both salts and hashes are represented as unpadded standard base64 strings,
// so they can be stored as text next to each other.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using the provided iteration count.
// A count of zero or less selects DefaultIterations.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	return &Hasher{
		iterations: iterations,
	}
}

// Iterations returns the PBKDF2 iteration count of the hasher.
func (h *Hasher) Iterations() int {
	return h.iterations
}

// GenerateSalt returns a fresh random salt.
func (h *Hasher) GenerateSalt() (string, error) {
	b, err := genRandomBytes(saltLen)
	if err != nil {
		return "", err
	}

	return base64.RawStdEncoding.EncodeToString(b), nil
}

// Compute derives the hash of secret with the given salt. The result only
// depends on its inputs (and the iteration count of the hasher).
func (h *Hasher) Compute(secret, salt string) (string, error) {
	if secret == "" || salt == "" {
		return "", ErrInvalidArgument
	}

	key := pbkdf2.Key([]byte(secret), []byte(salt), h.iterations, keyLen, sha256.New)
	return base64.RawStdEncoding.EncodeToString(key), nil
}

// Match reports whether secret hashed with salt equals hash.
// The comparison is done in constant time.
func (h *Hasher) Match(secret, salt, hash string) bool {
	got, err := h.Compute(secret, salt)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}

func genRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
