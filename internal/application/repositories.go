package application

import (
	"context"
	"time"
)

// EmployeeDirectory captures the directory operations the services need.
// GetEmployee returns ErrNotFound for unknown ids.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpsertEmployee(ctx context.Context, employee Employee) error
}

// ShiftLedger captures the ledger operations the services need. LatestShift
// returns ErrNotFound when the employee has no shifts. OpenShift and
// CloseShift are conditioned on the shift the caller read (afterShiftID is 0
// when there was none) and return ErrLedgerConflict when the ledger moved on.
type ShiftLedger interface {
	LatestShift(ctx context.Context, employeeID int64) (ShiftRecord, error)
	OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (ShiftRecord, error)
	CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (ShiftRecord, error)
	ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]ShiftRecord, error)
	ListOpenShifts(ctx context.Context) ([]OpenShift, error)
	CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error)
}

// ActivityPublisher receives every feed entry produced by a scan.
type ActivityPublisher interface {
	Publish(entry ActivityEntry)
}
