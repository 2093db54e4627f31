package db

import (
	"database/sql"

	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/inventory"
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

func (t *Tx) SaveCategory(c *inventory.Category) error {
	if c.ID == 0 {
		return insertCategory(&db.Query{}, t.tx.Exec, c)
	}
	return updateCategory(&db.Query{}, t.tx.Exec, c)
}

func (t *Tx) DeleteCategory(id int) error {
	return deleteByID(&db.Query{}, t.tx.Exec, "categories", id)
}

func (t *Tx) SaveProvider(p *inventory.Provider) error {
	if p.ID == 0 {
		return insertProvider(&db.Query{}, t.tx.Exec, p)
	}
	return updateProvider(&db.Query{}, t.tx.Exec, p)
}

func (t *Tx) DeleteProvider(id int) error {
	return deleteByID(&db.Query{}, t.tx.Exec, "providers", id)
}

func (t *Tx) SaveProduct(p *inventory.Product) error {
	if p.ID == 0 {
		return insertProduct(&db.Query{}, t.tx.Exec, p)
	}
	return updateProduct(&db.Query{}, t.tx.Exec, p)
}

func (t *Tx) DeleteProduct(id int) error {
	return deleteByID(&db.Query{}, t.tx.Exec, "products", id)
}

func (t *Tx) CountProducts(filter *inventory.ProductFilter) (int, error) {
	return countProducts(&db.Query{}, t.tx.Query, filter)
}
