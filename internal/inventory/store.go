package inventory

import "context"

// Store provides access to the inventory tables.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	ListCategories(ctx context.Context) ([]Category, error)
	ListProviders(ctx context.Context) ([]Provider, error)
	ListProducts(ctx context.Context, filter *ProductFilter) ([]ProductView, error)
}

// Tx is a transaction. If an error occurs on any of the Save/Delete/Count methods,
// the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
//
// The Save methods create the record if its ID is zero and update it otherwise.
// Updates and deletes of unknown records return errorz.ErrNotFound.
type Tx interface {
	Commit() error
	Rollback() error

	SaveCategory(c *Category) error
	DeleteCategory(id int) error

	SaveProvider(p *Provider) error
	DeleteProvider(id int) error

	SaveProduct(p *Product) error
	DeleteProduct(id int) error

	CountProducts(filter *ProductFilter) (int, error)
}
