// Package memory provides an in-process implementation of the persistence
// interfaces. It enforces the same open-shift rules as the SQLite store and is
// used by tests and throwaway kiosks.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

// Store keeps employees and shifts in memory.
type Store struct {
	mu        sync.RWMutex
	employees map[int64]persistence.Employee
	shifts    []persistence.ShiftRecord
	nextID    int64
	location  *time.Location
}

var (
	_ persistence.EmployeeDirectory = (*Store)(nil)
	_ persistence.ShiftLedger       = (*Store)(nil)
)

// New returns an empty Store. Work dates are truncated in location; nil means time.Local.
func New(location *time.Location) *Store {
	if location == nil {
		location = time.Local
	}
	return &Store{
		employees: make(map[int64]persistence.Employee),
		nextID:    1,
		location:  location,
	}
}

// --- EmployeeDirectory implementation ---

// GetEmployee retrieves an employee by id.
func (s *Store) GetEmployee(ctx context.Context, id int64) (persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.employees[id]
	if !ok {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return employee, nil
}

// ListEmployees returns all employees ordered by last name, first name, id.
func (s *Store) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]persistence.Employee, 0, len(s.employees))
	for _, employee := range s.employees {
		employees = append(employees, employee)
	}

	sort.Slice(employees, func(i, j int) bool {
		if employees[i].LastName != employees[j].LastName {
			return employees[i].LastName < employees[j].LastName
		}
		if employees[i].FirstName != employees[j].FirstName {
			return employees[i].FirstName < employees[j].FirstName
		}
		return employees[i].ID < employees[j].ID
	})

	return employees, nil
}

// UpsertEmployee stores or replaces an employee.
func (s *Store) UpsertEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID < 0 || strings.TrimSpace(employee.FirstName) == "" || strings.TrimSpace(employee.LastName) == "" {
		return persistence.ErrConstraintViolation
	}

	employee.Email = strings.ToLower(strings.TrimSpace(employee.Email))
	employee.Phone = strings.TrimSpace(employee.Phone)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[employee.ID] = employee
	return nil
}

// --- ShiftLedger implementation ---

// LatestShift returns the employee's most recent shift by clock-in time.
func (s *Store) LatestShift(ctx context.Context, employeeID int64) (persistence.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.historyLocked(employeeID)
	if len(history) == 0 {
		return persistence.ShiftRecord{}, persistence.ErrNotFound
	}
	return history[0], nil
}

// OpenShift appends an open shift unless the employee already has one, has a
// shift newer than afterShiftID, or has a boundary at or after clockIn.
func (s *Store) OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (persistence.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employeeID]; !ok {
		return persistence.ShiftRecord{}, persistence.ErrForeignKeyViolation
	}
	for _, shift := range s.shifts {
		if shift.EmployeeID != employeeID {
			continue
		}
		if shift.Open() || shift.ID > afterShiftID || !shift.ClockIn.Before(clockIn) || !shift.ClockOut.Before(clockIn) {
			return persistence.ShiftRecord{}, persistence.ErrOpenShiftExists
		}
	}

	shift := persistence.ShiftRecord{
		ID:         s.nextID,
		EmployeeID: employeeID,
		ClockIn:    clockIn.UTC(),
		WorkDate:   s.truncateDate(workDate),
	}
	s.nextID++
	s.shifts = append(s.shifts, shift)

	return cloneShift(shift), nil
}

// CloseShift stamps clock_out on shiftID while it is still the employee's open
// shift and clockOut is not before its clock_in.
func (s *Store) CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (persistence.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.shifts {
		shift := &s.shifts[i]
		if shift.ID != shiftID || shift.EmployeeID != employeeID {
			continue
		}
		if !shift.Open() || clockOut.Before(shift.ClockIn) {
			break
		}
		out := clockOut.UTC()
		shift.ClockOut = &out
		return cloneShift(*shift), nil
	}
	return persistence.ShiftRecord{}, persistence.ErrNoOpenShift
}

// ShiftHistory returns up to limit shifts, newest first. A non-positive limit
// returns every shift.
func (s *Store) ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]persistence.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.historyLocked(employeeID)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// ListOpenShifts returns every open shift with its employee, oldest clock-in first.
func (s *Store) ListOpenShifts(ctx context.Context) ([]persistence.OpenShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var open []persistence.OpenShift
	for _, shift := range s.shifts {
		if !shift.Open() {
			continue
		}
		employee, ok := s.employees[shift.EmployeeID]
		if !ok {
			continue
		}
		open = append(open, persistence.OpenShift{Shift: cloneShift(shift), Employee: employee})
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Shift.ClockIn.Before(open[j].Shift.ClockIn)
	})
	return open, nil
}

// CloseOpenShifts closes open shifts whose work date is before workDateBefore,
// stamping clock_out at midnight of the work date.
func (s *Store) CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.truncateDate(workDateBefore)
	var closed int64
	for i := range s.shifts {
		shift := &s.shifts[i]
		if !shift.Open() || !shift.WorkDate.Before(cutoff) {
			continue
		}
		midnight := shift.WorkDate.UTC()
		note := notes
		shift.ClockOut = &midnight
		shift.Notes = &note
		closed++
	}
	return closed, nil
}

func (s *Store) historyLocked(employeeID int64) []persistence.ShiftRecord {
	var history []persistence.ShiftRecord
	for _, shift := range s.shifts {
		if shift.EmployeeID == employeeID {
			history = append(history, cloneShift(shift))
		}
	}

	slices.SortStableFunc(history, func(a, b persistence.ShiftRecord) int {
		if c := b.ClockIn.Compare(a.ClockIn); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return history
}

func (s *Store) truncateDate(t time.Time) time.Time {
	local := t.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}

func cloneShift(shift persistence.ShiftRecord) persistence.ShiftRecord {
	if shift.ClockOut != nil {
		out := *shift.ClockOut
		shift.ClockOut = &out
	}
	if shift.Notes != nil {
		notes := *shift.Notes
		shift.Notes = &notes
	}
	return shift
}
