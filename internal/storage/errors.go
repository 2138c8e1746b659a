package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"budget/internal/core"
)

// sqliteErrorTaxonomy is the explicit mapping from SQLite extended result
// codes to taxonomy entries. A duplicate email lands on the users unique
// index, a delete of a referenced category on the RESTRICT foreign key.
// Codes absent from the map propagate unchanged.
var sqliteErrorTaxonomy = map[int]error{
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     core.ErrConflict,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: core.ErrConflict,
	sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY: core.ErrConflict,
	sqlite3.SQLITE_CONSTRAINT_TRIGGER:    core.ErrConflict,
}

// mapError translates driver failures into the shared taxonomy, keeping
// the original error in the chain for logs.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		if mapped, ok := sqliteErrorTaxonomy[serr.Code()]; ok {
			return fmt.Errorf("%s: %w: %w", op, mapped, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
