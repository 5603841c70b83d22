package persistence

import "time"

// Employee is a row in the employee directory.
type Employee struct {
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

// ShiftRecord is one clock-in with its optional clock-out.
type ShiftRecord struct {
	ID         int64
	EmployeeID int64
	ClockIn    time.Time
	ClockOut   *time.Time
	WorkDate   time.Time
	Notes      *string
}

// Open reports whether the shift has not been clocked out yet.
func (s ShiftRecord) Open() bool {
	return s.ClockOut == nil
}

// OpenShift pairs an open shift with the employee it belongs to.
type OpenShift struct {
	Shift    ShiftRecord
	Employee Employee
}
