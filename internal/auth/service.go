package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minitienda/minitienda/internal/errorz"
)

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	Throttle ThrottleConfig
	// HashIterations is the PBKDF2 iteration count, zero selects DefaultIterations.
	HashIterations int
}

// Service is the type that provides the main rules for
// authentication and account administration.
type Service struct {
	store    Store
	hasher   *Hasher
	throttle *Throttle

	// comparisonSalt and comparisonHash are used to compare passwords when no account was found.
	comparisonSalt string
	comparisonHash string

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, cfg ServiceConfig) (*Service, error) {
	hasher := NewHasher(cfg.HashIterations)

	salt, err := hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}

	filler, err := hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}

	hash, err := hasher.Compute(filler, salt)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:          s,
		hasher:         hasher,
		comparisonSalt: salt,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}

	// The throttle shares the service clock.
	svc.throttle = NewThrottle(cfg.Throttle)
	svc.throttle.NowFunc = func() time.Time {
		return svc.NowFunc()
	}

	return svc, nil
}

// Throttle returns the login throttle used by the service.
func (s *Service) Throttle() *Throttle {
	return s.throttle
}

// Hasher returns the password hasher used by the service.
func (s *Service) Hasher() *Hasher {
	return s.hasher
}

// Authenticate checks if the provided credentials identify an active account.
//
// Failed attempts are counted in sess. Once an identifier is locked, attempts are
// refused with an error matching ErrAccountLocked without looking up the account.
// An unknown email and a wrong password both result in ErrInvalidCredentials.
// Store failures result in an error matching ErrRepositoryUnavailable and are not
// counted as failed attempts.
func (s *Service) Authenticate(ctx context.Context, sess SessionContext, c Credentials) (Identity, error) {
	id := NormalizeIdentifier(c.Email)
	if id == "" || c.Password.IsEmpty() {
		return Identity{}, ErrInvalidInput
	}

	if s.throttle.IsLocked(sess, id) {
		return Identity{}, &LockedError{
			Until: s.throttle.Status(sess, id).LockedUntil,
		}
	}

	account, err := s.store.FindAccountByEmail(ctx, id)
	if errors.Is(err, errorz.ErrNotFound) {
		// Even if no account is found we compare to a hash to prevent timing differences
		// that could result in account enumeration attacks.
		_ = s.hasher.Match(c.Password.SecretValue(), s.comparisonSalt, s.comparisonHash)
		s.throttle.RecordFailure(sess, id)
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}

	if account.State != StateActive {
		return Identity{}, ErrAccountInactive
	}

	if !s.hasher.Match(c.Password.SecretValue(), account.Salt, account.PasswordHash) {
		s.throttle.RecordFailure(sess, id)
		return Identity{}, ErrInvalidCredentials
	}

	s.throttle.Reset(sess, id)

	return account.Identity(), nil
}

// Identify returns the identity of the account with the given ID, as long as
// the account is still active. It is used to check identities kept in sessions.
// It returns errorz.ErrNotFound for unknown accounts and ErrAccountInactive for
// accounts that are no longer active.
func (s *Service) Identify(ctx context.Context, id int) (Identity, error) {
	accounts, err := s.store.FindAccounts(ctx, &AccountFilter{
		IDs: []int{id},
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}

	if len(accounts) != 1 {
		return Identity{}, errorz.ErrNotFound
	}

	if accounts[0].State != StateActive {
		return Identity{}, ErrAccountInactive
	}

	return accounts[0].Identity(), nil
}

// CreateAccount creates a new active account with a freshly salted password hash.
// If an account with the same email exists, ErrDuplicateAccount is returned.
func (s *Service) CreateAccount(ctx context.Context, n NewAccount) (Identity, error) {
	var invalid errorz.InvalidInput
	if n.Email == "" {
		invalid = append(invalid, errorz.Keyed{Key: "Email", Err: errors.New("email is required")})
	}
	if err := n.Password.checkStrength(); err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "Password", Err: err})
	}
	if !n.Role.Valid() {
		invalid = append(invalid, errorz.Keyed{Key: "Role", Err: ErrUnknownRole})
	}
	if len(invalid) > 0 {
		return Identity{}, invalid
	}

	salt, hash, err := s.saltAndHash(n.Password)
	if err != nil {
		return Identity{}, err
	}

	now := s.NowFunc()
	account := Account{
		Email:        NormalizeIdentifier(string(n.Email)),
		PasswordHash: hash,
		Salt:         salt,
		State:        StateActive,
		Role:         n.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		existing, txErr := tx.FindAccounts(&AccountFilter{
			Emails: []string{account.Email},
		})
		if txErr != nil {
			return txErr
		}

		if len(existing) > 0 {
			return ErrDuplicateAccount
		}

		txErr = tx.SaveAccount(&account)
		if errors.Is(txErr, errorz.ErrConstraintViolated) {
			return ErrDuplicateAccount
		}
		return txErr
	})
	if err != nil {
		return Identity{}, err
	}

	return account.Identity(), nil
}

// ResetPassword replaces the salt and password hash of an account.
func (s *Service) ResetPassword(ctx context.Context, r PasswordReset) error {
	if err := r.Password.checkStrength(); err != nil {
		return errorz.InvalidInput{errorz.Keyed{Key: "Password", Err: err}}
	}

	salt, hash, err := s.saltAndHash(r.Password)
	if err != nil {
		return err
	}

	return s.updateAccount(ctx, r.ID, func(a *Account) {
		a.Salt = salt
		a.PasswordHash = hash
	})
}

// SetState changes the state of an account.
func (s *Service) SetState(ctx context.Context, c StateChange) error {
	if !c.State.Valid() {
		return errorz.InvalidInput{errorz.Keyed{Key: "State", Err: ErrUnknownState}}
	}

	return s.updateAccount(ctx, c.ID, func(a *Account) {
		a.State = c.State
	})
}

// ListAccounts lists all accounts ordered by ID.
func (s *Service) ListAccounts(ctx context.Context) ([]AccountInfo, error) {
	accounts, err := s.store.FindAccounts(ctx, &AccountFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Info())
	}

	return out, nil
}

// DeleteAccount deletes an account.
// It returns errorz.ErrNotFound if no such account exists.
func (s *Service) DeleteAccount(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx Tx) error {
		return tx.DeleteAccount(id)
	})
}

func (s *Service) updateAccount(ctx context.Context, id int, mf func(a *Account)) error {
	return s.inTx(ctx, func(tx Tx) error {
		accounts, err := tx.FindAccounts(&AccountFilter{
			IDs: []int{id},
		})
		if err != nil {
			return err
		}

		if len(accounts) != 1 {
			return errorz.ErrNotFound
		}

		a := accounts[0]
		mf(&a)
		a.UpdatedAt = s.NowFunc()

		return tx.SaveAccount(&a)
	})
}

func (s *Service) saltAndHash(p Password) (string, string, error) {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", "", err
	}

	hash, err := s.hasher.Compute(p.SecretValue(), salt)
	if err != nil {
		return "", "", err
	}

	return salt, hash, nil
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	return nil
}
