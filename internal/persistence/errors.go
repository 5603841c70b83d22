package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a CHECK or NOT NULL constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced row is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrOpenShiftExists is returned when opening a shift for an employee that
	// already has one open, or whose shifts changed since the caller read them.
	ErrOpenShiftExists = errors.New("persistence: open shift already exists")
	// ErrNoOpenShift is returned when the shift being closed is no longer open.
	ErrNoOpenShift = errors.New("persistence: no open shift")
)
