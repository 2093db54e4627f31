package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/minitienda/minitienda/internal"
	"github.com/minitienda/minitienda/internal/auth"
	authdb "github.com/minitienda/minitienda/internal/auth/db"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/db/migrate"
	"github.com/minitienda/minitienda/internal/errorz"
	"github.com/minitienda/minitienda/migrations"
	"github.com/spf13/cobra"
)

// app holds the flags shared by all subcommands.
type app struct {
	dbFile     string
	driver     string
	iterations int
	migrate    bool
}

// envFlags are the persistent flags that fall back to the server's
// environment variables, so both use the same database and hash cost.
var envFlags = map[string]string{
	"db":         "DB_FILENAME",
	"driver":     "DB_DRIVER",
	"iterations": "AUTH_HASH_ITERATIONS",
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "accounts",
		Short:        "Manage MiniTienda accounts",
		Version:      internal.Version(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			for name, key := range envFlags {
				v, ok := os.LookupEnv(key)
				if !ok || flags.Changed(name) {
					continue
				}
				if err := flags.Set(name, v); err != nil {
					return fmt.Errorf("invalid env variable %s: %w", key, err)
				}
			}

			if a.driver != db.DriverCGO && a.driver != db.DriverPureGo {
				return fmt.Errorf("unsupported driver %q, use %q or %q", a.driver, db.DriverCGO, db.DriverPureGo)
			}
			if a.iterations < auth.MinIterations {
				return fmt.Errorf("iterations must be at least %d, got %d", auth.MinIterations, a.iterations)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.dbFile, "db", "minitienda.db", "SQLite database file (env DB_FILENAME)")
	flags.StringVar(&a.driver, "driver", db.DriverCGO, "SQLite driver, sqlite3 (cgo) or sqlite (pure go) (env DB_DRIVER)")
	flags.IntVar(&a.iterations, "iterations", auth.DefaultIterations, "PBKDF2 iteration count, must match the server (env AUTH_HASH_ITERATIONS)")
	flags.BoolVar(&a.migrate, "migrate", true, "run pending database migrations first")

	cmd.AddCommand(
		newCreateCmd(a),
		newResetPasswordCmd(a),
		newSetStateCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
	)

	return cmd
}

// withService opens the database and runs f with an auth service on top of it.
func (a *app) withService(ctx context.Context, f func(svc *auth.Service) error) (err error) {
	writeDB, err := db.OpenSQLite(a.driver, a.dbFile, true)
	if err != nil {
		return fmt.Errorf("failed to open write database: %w", err)
	}
	defer closeDB(writeDB, &err)

	if a.migrate {
		_, err := migrate.RunFS(ctx, writeDB, migrations.FS, migrate.Metadata{
			AppVersion: internal.Version(),
			Timestamp:  internal.BuildRevisionTime,
		})
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	readDB, err := db.OpenSQLite(a.driver, a.dbFile, false)
	if err != nil {
		return fmt.Errorf("failed to open read database: %w", err)
	}
	defer closeDB(readDB, &err)

	svc, err := auth.NewService(authdb.New(readDB, writeDB), auth.ServiceConfig{
		HashIterations: a.iterations,
	})
	if err != nil {
		return err
	}

	return f(svc)
}

func closeDB(sqlDB *sql.DB, err *error) {
	if cErr := sqlDB.Close(); cErr != nil {
		*err = errors.Join(*err, cErr)
	}
}

// findAccount returns the account with the given email, ignoring case.
func findAccount(ctx context.Context, svc *auth.Service, addr string) (auth.AccountInfo, error) {
	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		return auth.AccountInfo{}, err
	}

	want := auth.NormalizeIdentifier(addr)
	for _, a := range accounts {
		if a.Email == want {
			return a, nil
		}
	}

	return auth.AccountInfo{}, fmt.Errorf("no account for %q: %w", want, errorz.ErrNotFound)
}
