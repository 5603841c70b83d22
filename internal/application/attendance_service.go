package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDebounce is the window in which a repeated scan is ignored.
const DefaultDebounce = time.Second

// AttendanceService decides whether a scan opens or closes a shift.
type AttendanceService struct {
	ledger   ShiftLedger
	debounce time.Duration
	location *time.Location
	logger   *slog.Logger
}

// AttendanceOptions tunes an AttendanceService. Zero values select defaults.
type AttendanceOptions struct {
	Debounce time.Duration
	Location *time.Location
}

// NewAttendanceService constructs the attendance state machine.
func NewAttendanceService(ledger ShiftLedger, opts AttendanceOptions, logger *slog.Logger) *AttendanceService {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &AttendanceService{
		ledger:   ledger,
		debounce: opts.Debounce,
		location: opts.Location,
		logger:   defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// RecordScan toggles the employee's shift at now. A closed or missing latest
// shift is opened; an open one is closed. Scans within the debounce window of
// the latest shift boundary return ErrScanSuppressed. Writes are conditioned
// on the shift that was read, so a scan never closes a shift opened after its
// read. A lost race is retried once with a fresh read before it is reported as
// suppressed.
func (s *AttendanceService) RecordScan(ctx context.Context, employee Employee, now time.Time) (outcome ScanOutcome, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.ledger == nil {
		err = storageError(errors.New("shift ledger not configured"))
		return
	}

	logger := s.loggerWith(ctx, "RecordScan", "employee_id", employee.ID)
	defer func() {
		switch {
		case errors.Is(err, ErrScanSuppressed):
			logger.InfoContext(ctx, "scan suppressed", "error_kind", ErrorKind(err))
		case err != nil:
			logger.ErrorContext(ctx, "failed to record scan", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.With("direction", outcome.Direction, "shift_id", outcome.ShiftID).InfoContext(ctx, "scan recorded")
		}
	}()

	var lastConflict error
	for attempt := 0; attempt < 2; attempt++ {
		var (
			written   ShiftRecord
			direction Direction
		)
		written, direction, err = s.toggle(ctx, employee.ID, now)
		if errors.Is(err, ErrLedgerConflict) {
			lastConflict = err
			continue
		}
		if err != nil {
			return
		}

		outcome = s.materialize(ctx, logger, employee, direction, written)
		return
	}

	err = fmt.Errorf("%w: %w", ErrScanSuppressed, lastConflict)
	return
}

func (s *AttendanceService) toggle(ctx context.Context, employeeID int64, now time.Time) (ShiftRecord, Direction, error) {
	latest, err := s.ledger.LatestShift(ctx, employeeID)
	hasLatest := true
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return ShiftRecord{}, "", storageError(err)
		}
		latest, hasLatest = ShiftRecord{}, false
	}

	if hasLatest && now.Sub(latest.Boundary()) <= s.debounce {
		return ShiftRecord{}, "", ErrScanSuppressed
	}

	if !hasLatest || !latest.Open() {
		written, err := s.ledger.OpenShift(ctx, employeeID, latest.ID, now, now.In(s.location))
		if err != nil {
			return ShiftRecord{}, "", ledgerError(err)
		}
		return written, DirectionIn, nil
	}

	written, err := s.ledger.CloseShift(ctx, employeeID, latest.ID, now)
	if err != nil {
		return ShiftRecord{}, "", ledgerError(err)
	}
	return written, DirectionOut, nil
}

// materialize builds the outcome from the two most recent ledger rows. When
// the re-read fails, the written row is used.
func (s *AttendanceService) materialize(ctx context.Context, logger *slog.Logger, employee Employee, direction Direction, written ShiftRecord) ScanOutcome {
	latest := written
	recent, err := s.ledger.ShiftHistory(ctx, employee.ID, 2)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "failed to re-read shift history", "error", err)
	case len(recent) > 0:
		latest = recent[0]
	}

	event := latest.Boundary()
	outcome := ScanOutcome{
		EmployeeID:  employee.ID,
		DisplayName: employee.DisplayName(),
		Direction:   direction,
		ShiftID:     latest.ID,
		EventTime:   event,
		Timestamp:   event.In(s.location).Format(EventTimeLayout),
	}
	if direction == DirectionOut {
		outcome.Worked = FormatDuration(latest.Worked())
	}
	return outcome
}

func ledgerError(err error) error {
	if errors.Is(err, ErrLedgerConflict) {
		return err
	}
	return storageError(err)
}
