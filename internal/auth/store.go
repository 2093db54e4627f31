package auth

import (
	"context"
)

// AccountFilter is used to filter accounts.
// Returned accounts must match all the provided fields.
// If a field is empty or nil, it's ignored.
type AccountFilter struct {
	IDs    []int
	Emails []string
	States []AccountState
}

// Store provides access to the account store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	// FindAccountByEmail finds an account by email, ignoring case.
	// It returns errorz.ErrNotFound if no account exists.
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
	FindAccounts(ctx context.Context, filter *AccountFilter) ([]Account, error)
}

// Tx is a transaction. If an error occurs on any of the Save/Delete/Find methods,
// the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	// SaveAccount creates the account if its ID is zero, otherwise it updates it.
	SaveAccount(a *Account) error
	DeleteAccount(id int) error
	FindAccounts(filter *AccountFilter) ([]Account, error)
}
