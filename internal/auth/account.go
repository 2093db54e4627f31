package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/minitienda/minitienda/internal/email"
)

// AccountState is the administrative state of an account.
type AccountState string

const (
	StateActive   AccountState = "active"
	StateInactive AccountState = "inactive"
	StateBlocked  AccountState = "blocked"
)

// Valid reports whether s is one of the known states.
func (s AccountState) Valid() bool {
	switch s {
	case StateActive, StateInactive, StateBlocked:
		return true
	}
	return false
}

func (s *AccountState) UnmarshalText(text []byte) error {
	v := AccountState(strings.TrimSpace(string(text)))
	if !v.Valid() {
		return fmt.Errorf("unknown account state %q", text)
	}

	*s = v
	return nil
}

// Role determines which screens an account can use.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

func (r *Role) UnmarshalText(text []byte) error {
	v := Role(strings.TrimSpace(string(text)))
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", text)
	}

	*r = v
	return nil
}

// Account contains the stored data for a user account.
type Account struct {
	ID           int
	Email        string
	PasswordHash string
	Salt         string
	State        AccountState
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the public identity of the account.
func (a Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Email: a.Email,
		Role:  a.Role,
	}
}

// Info returns the account without its credentials.
func (a Account) Info() AccountInfo {
	return AccountInfo{
		ID:        a.ID,
		Email:     a.Email,
		State:     a.State,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Identity is what an authenticated caller learns about an account.
type Identity struct {
	ID    int
	Email string
	Role  Role
}

// AccountInfo is an account as shown to administrators.
type AccountInfo struct {
	ID        int
	Email     string
	State     AccountState
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials are submitted by someone trying to log in.
type Credentials struct {
	Email    string
	Password Password
}

// NewAccount is the input to create an account.
type NewAccount struct {
	Email    email.Address
	Password Password
	Role     Role
}

// PasswordReset replaces the password of an account.
type PasswordReset struct {
	ID       int
	Password Password
}

// StateChange changes the state of an account.
type StateChange struct {
	ID    int
	State AccountState
}

// NormalizeIdentifier trims and lower-cases a login identifier.
func NormalizeIdentifier(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
