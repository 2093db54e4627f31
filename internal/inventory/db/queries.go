package db

import (
	"database/sql"
	"fmt"

	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/errorz"
	"github.com/minitienda/minitienda/internal/inventory"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertCategory(q *db.Query, ef execFunc, c *inventory.Category) error {
	q.Unsafe(`INSERT INTO categories (name, description) VALUES (`)
	q.Params(c.Name, c.Description)
	q.Unsafe(`)`)

	id, err := execInsert(q, ef)
	if err != nil {
		return err
	}

	c.ID = id
	return nil
}

func updateCategory(q *db.Query, ef execFunc, c *inventory.Category) error {
	q.Unsafe(`UPDATE categories SET name = `)
	q.Param(c.Name)
	q.Unsafe(`, description = `)
	q.Param(c.Description)
	q.Unsafe(` WHERE id = `)
	q.Param(c.ID)

	return execOne(q, ef, "category")
}

func selectCategories(q *db.Query, qf queryFunc) ([]inventory.Category, error) {
	q.Unsafe(`SELECT id, name, description FROM categories ORDER BY name ASC`)

	return scanAll(q, qf, func(rows *sql.Rows) (inventory.Category, error) {
		var c inventory.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description)
		return c, err
	})
}

func insertProvider(q *db.Query, ef execFunc, p *inventory.Provider) error {
	q.Unsafe(`INSERT INTO providers (name, email, phone, address) VALUES (`)
	q.Params(p.Name, p.Email, p.Phone, p.Address)
	q.Unsafe(`)`)

	id, err := execInsert(q, ef)
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

func updateProvider(q *db.Query, ef execFunc, p *inventory.Provider) error {
	q.Unsafe(`UPDATE providers SET name = `)
	q.Param(p.Name)
	q.Unsafe(`, email = `)
	q.Param(p.Email)
	q.Unsafe(`, phone = `)
	q.Param(p.Phone)
	q.Unsafe(`, address = `)
	q.Param(p.Address)
	q.Unsafe(` WHERE id = `)
	q.Param(p.ID)

	return execOne(q, ef, "provider")
}

func selectProviders(q *db.Query, qf queryFunc) ([]inventory.Provider, error) {
	q.Unsafe(`SELECT id, name, email, phone, address FROM providers ORDER BY name ASC`)

	return scanAll(q, qf, func(rows *sql.Rows) (inventory.Provider, error) {
		var p inventory.Provider
		err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address)
		return p, err
	})
}

func insertProduct(q *db.Query, ef execFunc, p *inventory.Product) error {
	q.Unsafe(`INSERT INTO products (name, category_id, provider_id, price_cents, stock) VALUES (`)
	q.Params(p.Name, p.CategoryID, p.ProviderID, int64(p.PriceCents), p.Stock)
	q.Unsafe(`)`)

	id, err := execInsert(q, ef)
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

func updateProduct(q *db.Query, ef execFunc, p *inventory.Product) error {
	q.Unsafe(`UPDATE products SET name = `)
	q.Param(p.Name)
	q.Unsafe(`, category_id = `)
	q.Param(p.CategoryID)
	q.Unsafe(`, provider_id = `)
	q.Param(p.ProviderID)
	q.Unsafe(`, price_cents = `)
	q.Param(int64(p.PriceCents))
	q.Unsafe(`, stock = `)
	q.Param(p.Stock)
	q.Unsafe(` WHERE id = `)
	q.Param(p.ID)

	return execOne(q, ef, "product")
}

func selectProducts(q *db.Query, qf queryFunc, f *inventory.ProductFilter) ([]inventory.ProductView, error) {
	q.Unsafe(`SELECT p.id, p.name, p.category_id, p.provider_id, p.price_cents, p.stock, c.name, pr.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		JOIN providers pr ON pr.id = p.provider_id
		WHERE 1=1`)

	productFilter(q, f)

	q.Unsafe(` ORDER BY p.name ASC, p.id ASC`)

	return scanAll(q, qf, func(rows *sql.Rows) (inventory.ProductView, error) {
		var (
			v     inventory.ProductView
			price int64
		)
		err := rows.Scan(&v.ID, &v.Name, &v.CategoryID, &v.ProviderID, &price, &v.Stock, &v.CategoryName, &v.ProviderName)
		v.PriceCents = inventory.Cents(price)
		return v, err
	})
}

func countProducts(q *db.Query, qf queryFunc, f *inventory.ProductFilter) (int, error) {
	q.Unsafe(`SELECT COUNT(*) FROM products p WHERE 1=1`)

	productFilter(q, f)

	counts, err := scanAll(q, qf, func(rows *sql.Rows) (int, error) {
		var n int
		err := rows.Scan(&n)
		return n, err
	})
	if err != nil {
		return 0, err
	}

	if len(counts) != 1 {
		return 0, fmt.Errorf("expected 1 count row, got %d", len(counts))
	}

	return counts[0], nil
}

func productFilter(q *db.Query, f *inventory.ProductFilter) {
	if f == nil {
		return
	}

	db.In(q, "p.id", f.IDs)
	db.In(q, "p.category_id", f.CategoryIDs)
	db.In(q, "p.provider_id", f.ProviderIDs)
}

// deleteByID deletes a single row. The table name is never user input.
func deleteByID(q *db.Query, ef execFunc, table string, id int) error {
	q.Unsafe(`DELETE FROM ` + table + ` WHERE id = `)
	q.Param(id)

	return execOne(q, ef, table)
}

func execInsert(q *db.Query, ef execFunc) (int, error) {
	s, params := q.Get()
	result, err := ef(s, params...)
	if err != nil {
		return 0, errorz.MapDBErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errorz.MapDBErr(err)
	}

	return int(id), nil
}

// execOne executes the query and expects exactly one affected row.
func execOne(q *db.Query, ef execFunc, what string) error {
	s, params := q.Get()
	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("%s not found: %w", what, errorz.ErrNotFound)
	}

	return nil
}

func scanAll[T any](q *db.Query, qf queryFunc, scan func(rows *sql.Rows) (T, error)) ([]T, error) {
	s, params := q.Get()
	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}
