package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a unique
// constraint (duplicate username, email, or name).
var ErrConflict = errors.New("conflict")

// Postgres error codes translated into the store taxonomy.
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

// ForeignKeyError is returned when a write references a parent row that
// does not exist. Reference names the referencing column so handlers can
// report which id was invalid.
type ForeignKeyError struct {
	Reference string
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("missing reference %s", e.Reference)
}

// translateError maps driver errors onto the store taxonomy. Errors that do
// not correspond to a taxonomy entry pass through unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pgCodeUniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, ErrConflict)
	case pgCodeForeignKeyViolation:
		return &ForeignKeyError{Reference: referenceFromConstraint(pqErr.Constraint)}
	}
	return err
}

// referenceFromConstraint extracts the referencing column from constraint
// names of the form <table>_<column>_fkey.
func referenceFromConstraint(constraint string) string {
	const suffix = "_fkey"
	name := constraint
	if n := len(name) - len(suffix); n > 0 && name[n:] == suffix {
		name = name[:n]
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return name[i+1:]
		}
	}
	return name
}
