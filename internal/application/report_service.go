package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ReportService lists clocked-in employees and runs the end-of-day sweep.
type ReportService struct {
	ledger   ShiftLedger
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

// NewReportService constructs the report service. A nil location means time.Local.
func NewReportService(ledger ShiftLedger, now func() time.Time, location *time.Location, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &ReportService{ledger: ledger, now: now, location: location, logger: defaultLogger(logger)}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// OpenShifts returns every employee currently clocked in, oldest clock-in first.
func (s *ReportService) OpenShifts(ctx context.Context) (open []OpenShift, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if s.ledger == nil {
		err = storageError(errors.New("shift ledger not configured"))
		return
	}

	logger := s.loggerWith(ctx, "OpenShifts")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list open shifts", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(open)).InfoContext(ctx, "open shifts listed")
	}()

	open, err = s.ledger.ListOpenShifts(ctx)
	if err != nil {
		err = storageError(err)
		open = nil
	}
	return
}

// Sweep force-closes open shifts whose work date is before the given day.
// A zero before means today in the kiosk location.
func (s *ReportService) Sweep(ctx context.Context, before time.Time) (result SweepResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if s.ledger == nil {
		err = storageError(errors.New("shift ledger not configured"))
		return
	}

	if before.IsZero() {
		before = s.now()
	}
	local := before.In(s.location)
	result.Before = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)

	logger := s.loggerWith(ctx, "Sweep", "before", result.Before.Format(WorkDateLayout))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("closed", result.Closed).InfoContext(ctx, "sweep completed")
	}()

	result.Closed, err = s.ledger.CloseOpenShifts(ctx, result.Before, SweepNote)
	if err != nil {
		err = storageError(err)
	}
	return
}
