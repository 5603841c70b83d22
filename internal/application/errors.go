package application

import "errors"

var (
	// ErrNotFound is returned when the requested employee or shift does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrScanSuppressed is returned when a scan falls inside the debounce window.
	ErrScanSuppressed = errors.New("application: scan suppressed")
	// ErrLedgerConflict is returned when a conditional ledger write found the
	// employee in a different state than expected.
	ErrLedgerConflict = errors.New("application: ledger conflict")
	// ErrStorageUnavailable wraps directory or ledger failures.
	ErrStorageUnavailable = errors.New("application: storage unavailable")
	// ErrUnknownSearchField is returned when a search names an unsupported field.
	ErrUnknownSearchField = errors.New("application: unknown search field")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
