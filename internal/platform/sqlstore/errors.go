package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/srgulbay/flashbox/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"
)

// exclusivityConstraint is the CHECK constraint that enforces exactly one item column.
const exclusivityConstraint = "review_records_exactly_one_item"

// violation classifies constraint failures independently of the engine.
type violation int

const (
	noViolation violation = iota
	uniqueViolation
	foreignKeyViolation
	checkViolation
	notNullViolation
	otherConstraintViolation
)

// classify inspects a driver error and reports which kind of constraint failed,
// plus the constraint or column name when the driver exposes it.
func classify(err error) (violation, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return uniqueViolation, pgErr.ConstraintName
		case foreignKeyViolationCode:
			return foreignKeyViolation, pgErr.ConstraintName
		case checkViolationCode:
			return checkViolation, pgErr.ConstraintName
		case notNullViolationCode:
			return notNullViolation, pgErr.ColumnName
		}
		return noViolation, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// SQLite puts the constraint name in the message, e.g.
		// "CHECK constraint failed: review_records_exactly_one_item".
		msg := liteErr.Error()
		name := ""
		if i := strings.LastIndex(msg, "failed: "); i >= 0 {
			name = strings.TrimSpace(msg[i+len("failed: "):])
		}

		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueViolation, name
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyViolation, name
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return checkViolation, name
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return notNullViolation, name
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			// Primary code only: fall back to the message prefix.
			switch {
			case strings.Contains(msg, "UNIQUE constraint failed"):
				return uniqueViolation, name
			case strings.Contains(msg, "CHECK constraint failed"):
				return checkViolation, name
			case strings.Contains(msg, "FOREIGN KEY constraint failed"):
				return foreignKeyViolation, name
			case strings.Contains(msg, "NOT NULL constraint failed"):
				return notNullViolation, name
			}
			return otherConstraintViolation, name
		}
	}

	return noViolation, ""
}

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better debugging information.
// This function should be used in all database operations to ensure consistent error handling.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	kind, name := classify(err)
	switch kind {
	case uniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case checkViolation:
		if strings.Contains(name, exclusivityConstraint) {
			return fmt.Errorf("%w: %v", store.ErrExclusivityViolation, err)
		}
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, name, err)
	case foreignKeyViolation:
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, name, err)
	case notNullViolation:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, name, err)
	case otherConstraintViolation:
		return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsUniqueViolation checks if the given error is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	kind, _ := classify(err)
	return kind == uniqueViolation
}

// IsForeignKeyViolation checks if the given error is a foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	kind, _ := classify(err)
	return kind == foreignKeyViolation
}

// IsCheckConstraintViolation checks if the given error is a CHECK constraint violation.
func IsCheckConstraintViolation(err error) bool {
	kind, _ := classify(err)
	return kind == checkViolation
}
