package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigrationFile indicates a file that does not follow the naming or content rules.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	// ErrDuplicateVersion indicates two files share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrVersionGap indicates a missing version between the lowest and highest available file.
	ErrVersionGap = errors.New("migration version gap")
	// ErrUnknownAppliedVersion indicates schema_migrations lists a version with no file.
	ErrUnknownAppliedVersion = errors.New("applied migration has no source file")
	// ErrChecksumMismatch indicates a file changed after it was applied.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
	// ErrMigrationFailed indicates a statement failed while applying a migration.
	ErrMigrationFailed = errors.New("migration execution failed")
)

// MigrationError attaches the migration being processed to an underlying error.
type MigrationError struct {
	Version   string
	Path      string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.Path, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.Path, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

func newMigrationError(migration Migration, operation string, err error) *MigrationError {
	return &MigrationError{
		Version:   migration.Version,
		Path:      migration.Path,
		Operation: operation,
		Err:       err,
	}
}
