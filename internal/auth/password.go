package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/minitienda/minitienda/internal/krypto"
)

const (
	minPasswordBytes = 8
	// We put a generous upper cap on password length, so people can use
	// passphrases but we don't allow MBs of data as a password.
	maxPasswordBytes = 512
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = fmt.Errorf("password must be at least %d bytes", minPasswordBytes)
)

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. To
// protect ourselves from accidentally doing so, the type implements
// several common interfaces that would allow it to be used inappropriately.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string.
// It errors if the password is too long. Empty passwords are accepted
// here and rejected by the operations that use them.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{
		plain: []byte(pwd),
	}, nil
}

// IsEmpty reports whether the password has no characters.
func (p Password) IsEmpty() bool {
	return len(p.plain) == 0
}

// checkStrength is the policy for passwords that are about to be stored.
func (p Password) checkStrength() error {
	if len(p.plain) < minPasswordBytes {
		return ErrWeakPassword
	}
	return nil
}

// SecretValue returns the plaintext. This is provided as an escape hatch
// for the hasher and should not be used anywhere else.
func (p Password) SecretValue() string {
	return string(p.plain)
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(krypto.SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}

// LogValue implements the slog.LogValuer interface.
func (p Password) LogValue() slog.Value {
	return slog.StringValue(krypto.SecretMarker)
}

func (p *Password) UnmarshalText(text []byte) error {
	pwd, err := ParsePassword(string(text))
	if err != nil {
		return err
	}

	*p = pwd
	return nil
}
