package application

import (
	"context"
	"errors"
	"testing"
)

func TestDirectoryService_UpsertEmployee(t *testing.T) {
	stores := newMemoryStores(t)
	changes := 0
	svc := NewDirectoryService(stores.directory, stores.ledger, DirectoryOptions{
		Location: kioskLocation,
		OnChange: func() { changes++ },
	}, quietLogger())
	ctx := context.Background()

	employee, err := svc.UpsertEmployee(ctx, EmployeeInput{
		ID:        7,
		FirstName: "  Leia ",
		LastName:  "Organa",
		Email:     "Leia@Example.com",
		Position:  "General",
	})
	if err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}
	if employee.FirstName != "Leia" || employee.Email != "leia@example.com" {
		t.Errorf("expected normalized employee, got %+v", employee)
	}
	if changes != 1 {
		t.Errorf("expected change hook to run once, got %d", changes)
	}

	detail, err := svc.GetEmployee(ctx, 7, 0)
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if detail.Employee.Position != "General" || len(detail.Shifts) != 0 {
		t.Errorf("unexpected detail %+v", detail)
	}
}

func TestDirectoryService_UpsertEmployee_Validation(t *testing.T) {
	stores := newMemoryStores(t)
	svc := NewDirectoryService(stores.directory, stores.ledger, DirectoryOptions{}, quietLogger())

	_, err := svc.UpsertEmployee(context.Background(), EmployeeInput{ID: -1, Email: "not-an-email"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"employee_id", "first_name", "last_name", "email"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected validation error for %s", field)
		}
	}
}

func TestDirectoryService_GetEmployee_Errors(t *testing.T) {
	stores := newMemoryStores(t)
	svc := NewDirectoryService(stores.directory, stores.ledger, DirectoryOptions{}, quietLogger())

	if _, err := svc.GetEmployee(context.Background(), 404, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	directory := &directoryStub{EmployeeDirectory: stores.directory, getErr: errors.New("io")}
	svc = NewDirectoryService(directory, stores.ledger, DirectoryOptions{}, quietLogger())
	if _, err := svc.GetEmployee(context.Background(), 1, 0); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
