package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Migration is a record of an applied migration file.
type Migration struct {
	// Sequence is the numeric prefix of the file name.
	Sequence int
	Filename string
	Metadata Metadata
}

// Equal reports whether m and other describe the same applied migration.
func (m Migration) Equal(other Migration) bool {
	if m.Sequence != other.Sequence || m.Filename != other.Filename {
		return false
	}

	return m.Metadata.AppVersion == other.Metadata.AppVersion &&
		m.Metadata.Timestamp.Equal(other.Metadata.Timestamp)
}

// Metadata is stored next to every applied migration.
type Metadata struct {
	AppVersion string
	Timestamp  time.Time
}

var (
	// ErrNoTable is returned when the database was never migrated.
	ErrNoTable = errors.New("no migrations table")
	// ErrMigrationsMismatch is returned when the migration files no longer agree
	// with the migrations recorded in the database.
	ErrMigrationsMismatch = errors.New("migration files don't match the applied migrations")
)

// MigrationError wraps the error of a migration file that failed to apply.
type MigrationError struct {
	Sequence int
	Filename string
	Err      error
}

func (m MigrationError) Error() string {
	return fmt.Sprintf("applying %s (sequence %d): %v", m.Filename, m.Sequence, m.Err)
}

func (m MigrationError) Unwrap() error {
	return m.Err
}

// RunFS applies the migration files in the root of fileSys that were not applied
// before, in order of their sequence prefix. Everything happens in one transaction:
// either all pending migrations are applied or none is.
//
// Applied migrations are checked against the files first. A file that was applied
// and is now missing or renamed, or a new file that sorts before an applied one,
// fails with ErrMigrationsMismatch.
//
// It returns the migrations applied by this call.
func RunFS(ctx context.Context, db *sql.DB, fileSys fs.FS, meta Metadata) ([]Migration, error) {
	files, err := loadFiles(fileSys)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS migrations (
		sequence    INTEGER PRIMARY KEY,
		filename    TEXT NOT NULL,
		app_version TEXT NOT NULL,
		timestamp   TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return nil, rollback(tx, fmt.Errorf("failed to create migrations table: %w", err))
	}

	applied, err := queryMigrations(ctx, tx)
	if err != nil {
		return nil, rollback(tx, err)
	}

	todo, err := pending(applied, files)
	if err != nil {
		return nil, rollback(tx, err)
	}

	ran, err := apply(ctx, tx, todo, meta)
	if err != nil {
		return nil, rollback(tx, err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ran, nil
}

// pending returns the files that still need to be applied.
func pending(applied []Migration, files []file) ([]file, error) {
	bySeq := make(map[int]file, len(files))
	for _, f := range files {
		bySeq[f.seq] = f
	}

	last := -1
	for _, m := range applied {
		f, ok := bySeq[m.Sequence]
		if !ok {
			return nil, fmt.Errorf("%s was applied but its file is gone: %w", m.Filename, ErrMigrationsMismatch)
		}
		if f.name != m.Filename {
			return nil, fmt.Errorf("sequence %d was applied as %s but the file is now %s: %w", m.Sequence, m.Filename, f.name, ErrMigrationsMismatch)
		}
		last = m.Sequence
	}

	todo := make([]file, 0, len(files)-len(applied))
	for _, f := range files {
		if f.seq > last {
			todo = append(todo, f)
			continue
		}

		if !isApplied(applied, f.seq) {
			return nil, fmt.Errorf("%s sorts before the last applied sequence %d: %w", f.name, last, ErrMigrationsMismatch)
		}
	}

	return todo, nil
}

func isApplied(applied []Migration, seq int) bool {
	for _, m := range applied {
		if m.Sequence == seq {
			return true
		}
	}
	return false
}

func apply(ctx context.Context, tx *sql.Tx, files []file, meta Metadata) ([]Migration, error) {
	insert, err := tx.PrepareContext(ctx, `INSERT INTO migrations (sequence, filename, app_version, timestamp) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer insert.Close()

	ran := make([]Migration, 0, len(files))
	for _, f := range files {
		_, err := tx.ExecContext(ctx, f.content)
		if err != nil {
			return nil, MigrationError{Sequence: f.seq, Filename: f.name, Err: err}
		}

		_, err = insert.ExecContext(ctx, f.seq, f.name, meta.AppVersion, meta.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", f.name, err)
		}

		ran = append(ran, Migration{
			Sequence: f.seq,
			Filename: f.name,
			Metadata: meta,
		})
	}

	return ran, nil
}

// QueryMigrations returns the applied migrations ordered by sequence.
// It returns ErrNoTable if the database was never migrated.
func QueryMigrations(ctx context.Context, db *sql.DB) ([]Migration, error) {
	return queryMigrations(ctx, db)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryMigrations(ctx context.Context, q querier) ([]Migration, error) {
	rows, err := q.QueryContext(ctx, `SELECT sequence, filename, app_version, timestamp FROM migrations ORDER BY sequence`)
	if err != nil {
		// Both sqlite drivers report a missing table in the message only.
		if strings.Contains(err.Error(), "no such table") {
			return nil, ErrNoTable
		}
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	out := make([]Migration, 0)
	for rows.Next() {
		var m Migration
		err := rows.Scan(&m.Sequence, &m.Filename, &m.Metadata.AppVersion, &m.Metadata.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		out = append(out, m)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	return out, nil
}

type file struct {
	seq     int
	name    string
	content string
}

// loadFiles reads the "{sequence}_{description}.sql" files in the root of fileSys,
// ordered by numeric sequence. Other files and directories are ignored.
func loadFiles(fileSys fs.FS) ([]file, error) {
	entries, err := fs.ReadDir(fileSys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]file, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q has no sequence prefix", name)
		}

		seq, err := strconv.Atoi(prefix)
		if err != nil || seq < 0 {
			return nil, fmt.Errorf("migration %q has an invalid sequence prefix %q", name, prefix)
		}

		content, err := fs.ReadFile(fileSys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", name, err)
		}

		files = append(files, file{seq: seq, name: name, content: string(content)})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].seq < files[j].seq
	})

	for i := 1; i < len(files); i++ {
		if files[i].seq == files[i-1].seq {
			return nil, fmt.Errorf("migrations %q and %q share sequence %d", files[i-1].name, files[i].name, files[i].seq)
		}
	}

	return files, nil
}

func rollback(tx *sql.Tx, err error) error {
	rErr := tx.Rollback()
	if rErr != nil {
		return errors.Join(err, rErr)
	}

	return err
}
