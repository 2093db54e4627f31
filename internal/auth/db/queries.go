package db

import (
	"database/sql"
	"fmt"

	"github.com/minitienda/minitienda/internal/auth"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/errorz"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertAccount(q *db.Query, ef execFunc, a *auth.Account) error {
	q.Unsafe(`INSERT INTO accounts (email, password_hash, salt, state, role, created_at, updated_at) VALUES (`)
	q.Params(a.Email, a.PasswordHash, a.Salt, a.State, a.Role, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	q.Unsafe(`)`)

	s, params := q.Get()
	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	a.ID = int(id)
	return nil
}

func updateAccount(q *db.Query, ef execFunc, a *auth.Account) error {
	q.Unsafe(`UPDATE accounts SET `)

	q.Unsafe(`email = `)
	q.Param(a.Email)

	q.Unsafe(`, password_hash = `)
	q.Param(a.PasswordHash)

	q.Unsafe(`, salt = `)
	q.Param(a.Salt)

	q.Unsafe(`, state = `)
	q.Param(a.State)

	q.Unsafe(`, role = `)
	q.Param(a.Role)

	q.Unsafe(`, updated_at = `)
	q.Param(a.UpdatedAt.UTC())

	q.Unsafe(` WHERE id = `)
	q.Param(a.ID)

	return execOne(q, ef, "account")
}

func deleteAccount(q *db.Query, ef execFunc, id int) error {
	q.Unsafe(`DELETE FROM accounts WHERE id = `)
	q.Param(id)

	return execOne(q, ef, "account")
}

func selectAccounts(q *db.Query, qf queryFunc, f *auth.AccountFilter) ([]auth.Account, error) {
	q.Unsafe(`SELECT id, email, password_hash, salt, state, role, created_at, updated_at FROM accounts WHERE 1=1`)

	if f != nil {
		db.In(q, "id", f.IDs)
		// the email column has NOCASE collation, the IN comparison uses it.
		db.In(q, "email", f.Emails)
		db.In(q, "state", f.States)
	}

	q.Unsafe(` ORDER BY id ASC`)

	s, params := q.Get()
	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.Account, 0)
	for rows.Next() {
		var a auth.Account
		err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Salt, &a.State, &a.Role, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
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
