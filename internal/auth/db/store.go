package db

import (
	"context"
	"database/sql"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/errorz"
)

// Store is responsible for interacting with the accounts table.
//
// Reads outside of transactions go to readDB, transactions are started on writeDB.
// Both may be the same *sql.DB.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// New creates a new Store.
func New(readDB, writeDB *sql.DB) *Store {
	return &Store{
		readDB:  readDB,
		writeDB: writeDB,
	}
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (auth.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}

// FindAccountByEmail finds the account with the given email, ignoring case.
// It returns errorz.ErrNotFound if no account matches.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	accounts, err := s.FindAccounts(ctx, &auth.AccountFilter{
		Emails: []string{email},
	})
	if err != nil {
		return auth.Account{}, err
	}

	if len(accounts) != 1 {
		return auth.Account{}, errorz.ErrNotFound
	}

	return accounts[0], nil
}

// FindAccounts queries for accounts based on the provided filter.
// It returns an empty slice if no accounts are found.
func (s *Store) FindAccounts(ctx context.Context, filter *auth.AccountFilter) ([]auth.Account, error) {
	return selectAccounts(&db.Query{}, func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}, filter)
}
