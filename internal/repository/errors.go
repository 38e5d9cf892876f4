// Package repository implements the MySQL persistence layer.  This file
// defines the error values shared across repositories so that handlers
// can map failures to specific HTTP responses: ErrNotFound becomes 404,
// ConflictError (which carries the exact invariant that failed) becomes
// 409, and anything else is a retryable persistence failure (500).
package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a booking, room, guest or other entity
// does not exist under the caller's hotel.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource belonging to another hotel.
var ErrForbidden = errors.New("forbidden")

// ConflictError reports that an operation cannot proceed because of
// existing state: an overlapping assignment, a room in the wrong status,
// a booking past the requested transition.  The Reason names the exact
// invariant that failed and is safe to return to the caller verbatim.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// Conflictf builds a ConflictError with a formatted reason.
func Conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// notFoundIfNoRows converts sql.ErrNoRows into ErrNotFound so handlers
// never have to import database/sql for the comparison.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
