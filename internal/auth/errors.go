package auth

import (
	"errors"
	"fmt"
	"time"
)

// Failure kinds of Authenticate. Check them with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrAccountLocked         = errors.New("account locked")
	ErrAccountInactive       = errors.New("account inactive")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)

var (
	ErrDuplicateAccount = errors.New("duplicate account")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownState     = errors.New("unknown account state")
)

// LockedError is returned while the login throttle refuses attempts.
// It matches ErrAccountLocked.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%v until %s", ErrAccountLocked, e.Until.Format(time.RFC3339))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// FailureKind returns a stable name for the failure kind of err,
// suitable for logs. It returns "" for a nil error.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrRepositoryUnavailable):
		return "repository_unavailable"
	default:
		return "unexpected"
	}
}
