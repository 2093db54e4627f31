package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/db/migrate"
	"github.com/minitienda/minitienda/migrations"
)

// RunWhile runs a database while the provided test is executing.
// It returns an empty database with all migrations applied.
func RunWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	return RunDriverWhile(t, db.DriverCGO, write)
}

// RunDriverWhile is like RunWhile but uses the given sqlite driver.
func RunDriverWhile(t *testing.T, driver string, write bool) *sql.DB {
	t.Helper()

	sqlDB := RunUnmigratedDriverWhile(t, driver, write)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{})
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return sqlDB
}

// RunUnmigratedWhile runs a database while the provided test is executing.
// It returns an empty database without any migrations applied.
func RunUnmigratedWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	return RunUnmigratedDriverWhile(t, db.DriverCGO, write)
}

// RunUnmigratedDriverWhile is like RunUnmigratedWhile but uses the given sqlite driver.
//
// Every connection to ":memory:" opens a new database, so only the single
// connection write pool sees a consistent database. Tests should pass write=true
// unless they test read-only behaviour.
func RunUnmigratedDriverWhile(t *testing.T, driver string, write bool) *sql.DB {
	t.Helper()

	sqlDB, err := db.OpenSQLite(driver, ":memory:", write)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		err := sqlDB.Close()
		if err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return sqlDB
}
