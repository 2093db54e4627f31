package db

import (
	"database/sql"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/db"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// SaveAccount creates the account when its ID is zero and sets the ID.
// Otherwise it updates the account and returns errorz.ErrNotFound if it doesn't exist.
func (t *Tx) SaveAccount(a *auth.Account) error {
	if a.ID == 0 {
		return insertAccount(&db.Query{}, t.tx.Exec, a)
	}
	return updateAccount(&db.Query{}, t.tx.Exec, a)
}

// DeleteAccount deletes an account.
// It returns errorz.ErrNotFound if no account is found.
func (t *Tx) DeleteAccount(id int) error {
	return deleteAccount(&db.Query{}, t.tx.Exec, id)
}

// FindAccounts queries for accounts based on the provided filter.
// It returns an empty slice if no accounts are found.
func (t *Tx) FindAccounts(filter *auth.AccountFilter) ([]auth.Account, error) {
	return selectAccounts(&db.Query{}, t.tx.Query, filter)
}
