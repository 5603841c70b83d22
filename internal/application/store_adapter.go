package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

// DirectoryAdapter exposes a persistence.EmployeeDirectory as an EmployeeDirectory.
type DirectoryAdapter struct {
	repo persistence.EmployeeDirectory
}

// NewDirectoryAdapter wraps repo.
func NewDirectoryAdapter(repo persistence.EmployeeDirectory) *DirectoryAdapter {
	return &DirectoryAdapter{repo: repo}
}

func (a *DirectoryAdapter) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	stored, err := a.repo.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, mapPersistenceError(err)
	}
	return toApplicationEmployee(stored), nil
}

func (a *DirectoryAdapter) ListEmployees(ctx context.Context) ([]Employee, error) {
	models, err := a.repo.ListEmployees(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	employees := make([]Employee, 0, len(models))
	for _, model := range models {
		employees = append(employees, toApplicationEmployee(model))
	}
	return employees, nil
}

func (a *DirectoryAdapter) UpsertEmployee(ctx context.Context, employee Employee) error {
	return mapPersistenceError(a.repo.UpsertEmployee(ctx, toPersistenceEmployee(employee)))
}

// LedgerAdapter exposes a persistence.ShiftLedger as a ShiftLedger.
type LedgerAdapter struct {
	repo persistence.ShiftLedger
}

// NewLedgerAdapter wraps repo.
func NewLedgerAdapter(repo persistence.ShiftLedger) *LedgerAdapter {
	return &LedgerAdapter{repo: repo}
}

func (a *LedgerAdapter) LatestShift(ctx context.Context, employeeID int64) (ShiftRecord, error) {
	stored, err := a.repo.LatestShift(ctx, employeeID)
	if err != nil {
		return ShiftRecord{}, mapPersistenceError(err)
	}
	return toApplicationShift(stored), nil
}

func (a *LedgerAdapter) OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (ShiftRecord, error) {
	stored, err := a.repo.OpenShift(ctx, employeeID, afterShiftID, clockIn, workDate)
	if err != nil {
		return ShiftRecord{}, mapPersistenceError(err)
	}
	return toApplicationShift(stored), nil
}

func (a *LedgerAdapter) CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (ShiftRecord, error) {
	stored, err := a.repo.CloseShift(ctx, employeeID, shiftID, clockOut)
	if err != nil {
		return ShiftRecord{}, mapPersistenceError(err)
	}
	return toApplicationShift(stored), nil
}

func (a *LedgerAdapter) ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]ShiftRecord, error) {
	models, err := a.repo.ShiftHistory(ctx, employeeID, limit)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	shifts := make([]ShiftRecord, 0, len(models))
	for _, model := range models {
		shifts = append(shifts, toApplicationShift(model))
	}
	return shifts, nil
}

func (a *LedgerAdapter) ListOpenShifts(ctx context.Context) ([]OpenShift, error) {
	models, err := a.repo.ListOpenShifts(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	open := make([]OpenShift, 0, len(models))
	for _, model := range models {
		open = append(open, OpenShift{
			Shift:    toApplicationShift(model.Shift),
			Employee: toApplicationEmployee(model.Employee),
		})
	}
	return open, nil
}

func (a *LedgerAdapter) CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error) {
	closed, err := a.repo.CloseOpenShifts(ctx, workDateBefore, notes)
	if err != nil {
		return 0, mapPersistenceError(err)
	}
	return closed, nil
}

func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrOpenShiftExists), errors.Is(err, persistence.ErrNoOpenShift):
		return fmt.Errorf("%w: %w", ErrLedgerConflict, err)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("employee", "employee violates directory constraints")
		return vErr
	default:
		return err
	}
}

func toApplicationEmployee(model persistence.Employee) Employee {
	return Employee{
		ID:         model.ID,
		FirstName:  model.FirstName,
		LastName:   model.LastName,
		Email:      model.Email,
		Phone:      model.Phone,
		PhotoPath:  model.PhotoPath,
		Role:       model.Role,
		Position:   model.Position,
		Department: model.Department,
	}
}

func toPersistenceEmployee(employee Employee) persistence.Employee {
	return persistence.Employee{
		ID:         employee.ID,
		FirstName:  employee.FirstName,
		LastName:   employee.LastName,
		Email:      employee.Email,
		Phone:      employee.Phone,
		PhotoPath:  employee.PhotoPath,
		Role:       employee.Role,
		Position:   employee.Position,
		Department: employee.Department,
	}
}

func toApplicationShift(model persistence.ShiftRecord) ShiftRecord {
	shift := ShiftRecord{
		ID:         model.ID,
		EmployeeID: model.EmployeeID,
		ClockIn:    model.ClockIn,
		WorkDate:   model.WorkDate,
	}
	if model.ClockOut != nil {
		out := *model.ClockOut
		shift.ClockOut = &out
	}
	if model.Notes != nil {
		shift.Notes = *model.Notes
	}
	return shift
}
