package db

import (
	"context"
	"database/sql"

	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/inventory"
)

// Store is responsible for interacting with the categories, providers and products tables.
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
func (s *Store) BeginTx(ctx context.Context) (inventory.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]inventory.Category, error) {
	return selectCategories(&db.Query{}, s.queryFunc(ctx))
}

func (s *Store) ListProviders(ctx context.Context) ([]inventory.Provider, error) {
	return selectProviders(&db.Query{}, s.queryFunc(ctx))
}

func (s *Store) ListProducts(ctx context.Context, filter *inventory.ProductFilter) ([]inventory.ProductView, error) {
	return selectProducts(&db.Query{}, s.queryFunc(ctx), filter)
}

func (s *Store) queryFunc(ctx context.Context) queryFunc {
	return func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}
}
