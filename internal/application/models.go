package application

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts used in scan outcomes and shift summaries.
const (
	EventTimeLayout = "03:04 PM 02-01"
	WorkDateLayout  = "2006-01-02"
	ClockTimeLayout = "03:04 PM"

	// OpenShiftPlaceholder stands in for the clock-out and duration of an open shift.
	OpenShiftPlaceholder = "-----"

	// SweepNote is recorded on shifts force-closed by the end-of-day sweep.
	SweepNote = "no clock out"
)

// Employee is a directory entry as seen by the kiosk.
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

// DisplayName returns "First Last".
func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// ShiftRecord is one ledger row.
type ShiftRecord struct {
	ID         int64
	EmployeeID int64
	ClockIn    time.Time
	ClockOut   *time.Time
	WorkDate   time.Time
	Notes      string
}

// Open reports whether the shift has no clock-out yet.
func (s ShiftRecord) Open() bool {
	return s.ClockOut == nil
}

// Boundary returns the most recent timestamp on the row. Swept rows carry a
// clock-out earlier than their clock-in, so the later of the two is used.
func (s ShiftRecord) Boundary() time.Time {
	if s.ClockOut != nil && s.ClockOut.After(s.ClockIn) {
		return *s.ClockOut
	}
	return s.ClockIn
}

// Worked returns the closed shift's duration, clamped at zero. Open shifts report zero.
func (s ShiftRecord) Worked() time.Duration {
	if s.ClockOut == nil {
		return 0
	}
	d := s.ClockOut.Sub(s.ClockIn)
	if d < 0 {
		return 0
	}
	return d
}

// OpenShift pairs an open shift with its employee.
type OpenShift struct {
	Shift    ShiftRecord
	Employee Employee
}

// Direction is the clock event produced by a scan.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ScanOutcome describes a recorded clock event.
type ScanOutcome struct {
	EmployeeID  int64
	DisplayName string
	Direction   Direction
	ShiftID     int64
	EventTime   time.Time
	// Timestamp is EventTime rendered with EventTimeLayout in the kiosk location.
	Timestamp string
	// Worked is the "Hh Mm" duration of the shift that was just closed.
	Worked string
}

// ActivityEntry is one line of the recent-activity feed. Entries without an
// outcome record a scan that did not resolve to an employee.
type ActivityEntry struct {
	Outcome   *ScanOutcome
	RawID     string
	ScannedAt time.Time
}

// Unresolved reports whether the entry is an unknown-id placeholder.
func (e ActivityEntry) Unresolved() bool {
	return e.Outcome == nil
}

// Feed is the recent-activity list, most recent first.
type Feed []ActivityEntry

// PresentationKind classifies the result of a kiosk scan.
type PresentationKind string

const (
	PresentationRecorded   PresentationKind = "recorded"
	PresentationSuppressed PresentationKind = "suppressed"
	PresentationInvalidID  PresentationKind = "invalid_id"
)

// PresentationRecord is what the kiosk shows after a scan.
type PresentationRecord struct {
	Kind          PresentationKind
	CorrelationID string
	RawID         string
	Employee      *Employee
	Outcome       *ScanOutcome
	Message       string
}

// ShiftSummary is a shift rendered for search results and employee lookups.
type ShiftSummary struct {
	ShiftID  int64
	WorkDate string
	ClockIn  string
	ClockOut string
	Duration string
	Notes    string
	Open     bool
}

// MatchedEmployee is a ranked search hit with its recent shifts.
type MatchedEmployee struct {
	Employee Employee
	Score    int
	Shifts   []ShiftSummary
}

// SearchParams captures a search request.
type SearchParams struct {
	Query        string
	Field        string
	HistoryLimit int
}

// EmployeeDetail is an employee with recent shifts.
type EmployeeDetail struct {
	Employee Employee
	Shifts   []ShiftSummary
}

// EmployeeInput carries operator supplied directory fields.
type EmployeeInput struct {
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

// SweepResult reports an end-of-day sweep.
type SweepResult struct {
	Before time.Time
	Closed int64
}

// FormatDuration renders d as "Hh Mm". Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func summarizeShift(shift ShiftRecord, location *time.Location) ShiftSummary {
	summary := ShiftSummary{
		ShiftID:  shift.ID,
		WorkDate: shift.WorkDate.In(location).Format(WorkDateLayout),
		ClockIn:  shift.ClockIn.In(location).Format(ClockTimeLayout),
		ClockOut: OpenShiftPlaceholder,
		Duration: OpenShiftPlaceholder,
		Notes:    shift.Notes,
		Open:     shift.Open(),
	}
	if shift.ClockOut != nil {
		summary.ClockOut = shift.ClockOut.In(location).Format(ClockTimeLayout)
		summary.Duration = FormatDuration(shift.Worked())
	}
	return summary
}

func summarizeShifts(shifts []ShiftRecord, location *time.Location) []ShiftSummary {
	if len(shifts) == 0 {
		return nil
	}
	out := make([]ShiftSummary, 0, len(shifts))
	for _, shift := range shifts {
		out = append(out, summarizeShift(shift, location))
	}
	return out
}
