package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minitienda/minitienda/internal"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/db/migrate"
	"github.com/minitienda/minitienda/migrations"
)

const helpText = `Usage: dbmigrate sqlite_file [driver]

driver is either sqlite3 (cgo, default) or sqlite (pure go).`

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, helpText)
		os.Exit(1)
	}

	dbFile := os.Args[1]

	driver := db.DriverCGO
	if len(os.Args) == 3 {
		driver = os.Args[2]
	}

	sqlDB, err := db.OpenSQLite(driver, dbFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{
		AppVersion: internal.Version(),
		Timestamp:  internal.BuildRevisionTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	if len(ran) == 0 {
		fmt.Println("database is up to date")
	}

	for _, m := range ran {
		fmt.Printf("%d: %s\n", m.Sequence, m.Filename)
	}
}
