package errorz

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConstraintViolated = errors.New("constraint violated")
)

// MapDBErr maps database errors to appropriate errorz errors.
// It understands errors of both the cgo (mattn) and pure Go (modernc) SQLite drivers.
// If err is nil, MapDBErr returns nil.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	sErr := sqlite3.Error{}
	if errors.As(err, &sErr) {
		if sErr.Code == sqlite3.ErrConstraint {
			return errors.Join(ErrConstraintViolated, err)
		}
	}

	var mErr *msqlite.Error
	if errors.As(err, &mErr) {
		// Extended result codes keep the primary code in the lower byte.
		if mErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT {
			return errors.Join(ErrConstraintViolated, err)
		}
	}

	return err
}
