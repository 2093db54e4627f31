package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver, it requires cgo.
	DriverCGO = "sqlite3"
	// DriverPureGo is the modernc.org/sqlite driver, a cgo free translation of SQLite.
	DriverPureGo = "sqlite"
)

// We need to configure a few options to make sure SQLite works well with our app:
// - WAL Mode so that reads and writes don't block eachother.
// - A busy timeout, specifying the duration a connection will wait for a lock.
// - Foreign keys are enforced.
// Writers use immediate transactions to prevent locking issues, readers are query only.
// Both drivers spell these options differently.
var driverOptions = map[string]struct {
	write string
	read  string
}{
	DriverCGO: {
		write: "?_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate",
		read:  "?_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_query_only=on",
	},
	DriverPureGo: {
		write: "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_txlock=immediate",
		read:  "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=query_only(1)",
	},
}

// OpenSQLite opens a pool of SQLite connections using the given driver (DriverCGO
// or DriverPureGo). Different settings are appropriate for reading and writing, so
// this function needs to know what the sql.DB will be used for.
//
// See this comment for more information:
// https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func OpenSQLite(driver, dbFile string, write bool) (*sql.DB, error) {
	opts, ok := driverOptions[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	optsPostfix := opts.read
	if write {
		optsPostfix = opts.write
	}

	db, err := sql.Open(driver, dbFile+optsPostfix)
	if err != nil {
		return nil, err
	}

	if write {
		// use only a single connection for writing.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		// don't close this connection.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	return db, nil
}
