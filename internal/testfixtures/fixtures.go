package testfixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/timeclock-kiosk/internal/application"
	"github.com/example/timeclock-kiosk/internal/persistence"
)

// Fixture ids start well above the small literal ids tests use for misses.
var employeeSequence = NewEmployeeIDSequence(1000)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Employee fixtures -----------------------------

// EmployeeFixture represents a deterministic directory entry that can be
// materialised for application or persistence tests.
type EmployeeFixture struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	PhotoPath  string
	Role       string
	Position   string
	Department string
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee fixture with optional overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	id := employeeSequence.Next()
	fixture := EmployeeFixture{
		ID:         id,
		FirstName:  "Employee",
		LastName:   fmt.Sprintf("Number%d", id),
		Email:      fmt.Sprintf("employee-%d@example.com", id),
		Phone:      fmt.Sprintf("555-%04d", id%10000),
		PhotoPath:  fmt.Sprintf("pics/%d.jpg", id),
		Role:       "staff",
		Position:   "associate",
		Department: "operations",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeID overrides the generated employee id.
func WithEmployeeID(id int64) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeName overrides the generated first and last names.
func WithEmployeeName(first, last string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithEmployeeEmail overrides the generated email address.
func WithEmployeeEmail(email string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Email = email
	}
}

// WithEmployeePhone overrides the generated phone number.
func WithEmployeePhone(phone string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Phone = phone
	}
}

// WithEmployeeJob sets role, position and department together.
func WithEmployeeJob(role, position, department string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Role = role
		f.Position = position
		f.Department = department
	}
}

// Badge returns the id as a scanner would report it.
func (f EmployeeFixture) Badge() string {
	return fmt.Sprintf("%d", f.ID)
}

// Application returns the fixture as an application.Employee value.
func (f EmployeeFixture) Application() application.Employee {
	return application.Employee{
		ID:         f.ID,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		PhotoPath:  f.PhotoPath,
		Role:       f.Role,
		Position:   f.Position,
		Department: f.Department,
	}
}

// Input returns the fixture as an application.EmployeeInput.
func (f EmployeeFixture) Input() application.EmployeeInput {
	return application.EmployeeInput{
		ID:         f.ID,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		PhotoPath:  f.PhotoPath,
		Role:       f.Role,
		Position:   f.Position,
		Department: f.Department,
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	return persistence.Employee{
		ID:         f.ID,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		PhotoPath:  f.PhotoPath,
		Role:       f.Role,
		Position:   f.Position,
		Department: f.Department,
	}
}

// ----------------------------- Shift fixtures -----------------------------

// ShiftFixture represents a closed or open shift for seeding ledgers.
type ShiftFixture struct {
	EmployeeID int64
	ClockIn    time.Time
	ClockOut   *time.Time
}

// ShiftOption configures the generated shift fixture.
type ShiftOption func(*ShiftFixture)

// NewShiftFixture returns an eight hour closed shift starting at ReferenceTime.
func NewShiftFixture(employeeID int64, opts ...ShiftOption) ShiftFixture {
	clockOut := referenceTime.Add(8 * time.Hour)
	fixture := ShiftFixture{
		EmployeeID: employeeID,
		ClockIn:    referenceTime,
		ClockOut:   &clockOut,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithShiftWindow sets the clock-in and clock-out instants.
func WithShiftWindow(clockIn, clockOut time.Time) ShiftOption {
	return func(f *ShiftFixture) {
		f.ClockIn = clockIn
		f.ClockOut = &clockOut
	}
}

// WithShiftOpen leaves the shift open, clocked in at clockIn.
func WithShiftOpen(clockIn time.Time) ShiftOption {
	return func(f *ShiftFixture) {
		f.ClockIn = clockIn
		f.ClockOut = nil
	}
}

// Seed writes the shift through the ledger's conditional writes.
func (f ShiftFixture) Seed(ctx context.Context, ledger persistence.ShiftLedger) (persistence.ShiftRecord, error) {
	var afterShiftID int64
	latest, err := ledger.LatestShift(ctx, f.EmployeeID)
	switch {
	case err == nil:
		afterShiftID = latest.ID
	case !errors.Is(err, persistence.ErrNotFound):
		return persistence.ShiftRecord{}, fmt.Errorf("seed read latest shift: %w", err)
	}

	record, err := ledger.OpenShift(ctx, f.EmployeeID, afterShiftID, f.ClockIn, f.ClockIn)
	if err != nil {
		return persistence.ShiftRecord{}, fmt.Errorf("seed open shift: %w", err)
	}
	if f.ClockOut == nil {
		return record, nil
	}
	record, err = ledger.CloseShift(ctx, f.EmployeeID, record.ID, *f.ClockOut)
	if err != nil {
		return persistence.ShiftRecord{}, fmt.Errorf("seed close shift: %w", err)
	}
	return record, nil
}

// UnresolvedEntry returns a feed placeholder for a scan that matched nobody.
func UnresolvedEntry(raw string) application.ActivityEntry {
	return application.ActivityEntry{RawID: raw, ScannedAt: referenceTime}
}
