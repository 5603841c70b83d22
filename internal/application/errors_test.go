package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" || err.HasErrors() {
		t.Fatalf("expected nil ValidationError to be empty")
	}
	if got := (&ValidationError{}).Error(); got != "validation failed" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestValidationError_FromEmployeeInput(t *testing.T) {
	t.Parallel()

	stores := newMemoryStores(t, hanSolo())
	changes := 0
	svc := NewDirectoryService(stores.directory, stores.ledger, DirectoryOptions{
		OnChange: func() { changes++ },
	}, quietLogger())

	_, err := svc.UpsertEmployee(context.Background(), EmployeeInput{
		ID:        11111111,
		FirstName: "Han",
		LastName:  "Solo",
		Email:     "han at falcon",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.FieldErrors) != 1 || vErr.FieldErrors["email"] == "" {
		t.Fatalf("expected only an email error, got %v", vErr.FieldErrors)
	}
	if ErrorKind(err) != "validation" {
		t.Errorf("expected validation error kind, got %q", ErrorKind(err))
	}
	if changes != 0 {
		t.Errorf("rejected input must not trigger the change hook")
	}

	stored, err := stores.directory.GetEmployee(context.Background(), 11111111)
	if err != nil || stored.Email != "han.solo@example.com" {
		t.Fatalf("expected stored employee untouched, got %+v, %v", stored, err)
	}
}

func TestErrorKind_PersistenceSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       error
		wantKind string
	}{
		{persistence.ErrNotFound, "not_found"},
		{persistence.ErrForeignKeyViolation, "not_found"},
		{persistence.ErrOpenShiftExists, "ledger_conflict"},
		{persistence.ErrNoOpenShift, "ledger_conflict"},
		{persistence.ErrConstraintViolation, "validation"},
	}
	for _, tc := range cases {
		mapped := mapPersistenceError(tc.in)
		if got := ErrorKind(mapped); got != tc.wantKind {
			t.Errorf("ErrorKind(mapPersistenceError(%v)) = %q, want %q", tc.in, got, tc.wantKind)
		}
	}

	conflict := mapPersistenceError(persistence.ErrNoOpenShift)
	if !errors.Is(conflict, persistence.ErrNoOpenShift) {
		t.Errorf("expected ledger conflict to keep its cause, got %v", conflict)
	}

	var vErr *ValidationError
	if !errors.As(mapPersistenceError(persistence.ErrConstraintViolation), &vErr) || vErr.FieldErrors["employee"] == "" {
		t.Errorf("expected constraint violation to report the employee field, got %v", vErr)
	}
}
