package persistence

import (
	"context"
	"time"
)

// EmployeeDirectory exposes read access to employees plus the upsert used by
// directory imports.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpsertEmployee(ctx context.Context, employee Employee) error
}

// ShiftLedger stores shift records. OpenShift and CloseShift are conditional
// writes against the shift the caller last observed.
//
// OpenShift inserts only when the employee has no open shift, no shift newer
// than afterShiftID (0 when the caller saw none) and no boundary at or after
// clockIn; otherwise it returns ErrOpenShiftExists. CloseShift closes shiftID
// only while it is still open and clockOut is not before its clock_in;
// otherwise it returns ErrNoOpenShift.
//
// CloseOpenShifts force-closes every open shift whose work date is before
// workDateBefore, stamping clock_out with midnight of the work date.
type ShiftLedger interface {
	LatestShift(ctx context.Context, employeeID int64) (ShiftRecord, error)
	OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (ShiftRecord, error)
	CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (ShiftRecord, error)
	ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]ShiftRecord, error)
	ListOpenShifts(ctx context.Context) ([]OpenShift, error)
	CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error)
}
