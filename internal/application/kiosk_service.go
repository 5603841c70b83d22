package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// KioskService handles a badge scan end to end: resolve, record, feed.
type KioskService struct {
	resolver    *IdentityResolver
	attendance  *AttendanceService
	publisher   ActivityPublisher
	feedMax     int
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// KioskOptions configures a KioskService. Zero values select defaults.
type KioskOptions struct {
	FeedMax     int
	Publisher   ActivityPublisher
	IDGenerator func() string
	Now         func() time.Time
}

// NewKioskService wires the scan pipeline.
func NewKioskService(resolver *IdentityResolver, attendance *AttendanceService, opts KioskOptions, logger *slog.Logger) *KioskService {
	if opts.FeedMax <= 0 {
		opts.FeedMax = DefaultFeedMax
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = func() string { return "" }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &KioskService{
		resolver:    resolver,
		attendance:  attendance,
		publisher:   opts.Publisher,
		feedMax:     opts.FeedMax,
		idGenerator: opts.IDGenerator,
		now:         opts.Now,
		logger:      defaultLogger(logger),
	}
}

func (s *KioskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "KioskService", operation, attrs...)
}

// Scan processes one scanned value against the caller's feed. Unknown ids and
// suppressed scans are reported through the presentation record, not as
// errors. Storage failures return an error together with the unchanged feed.
func (s *KioskService) Scan(ctx context.Context, raw string, feed Feed) (presentation PresentationRecord, updated Feed, err error) {
	if s == nil || s.resolver == nil || s.attendance == nil {
		return PresentationRecord{}, feed, fmt.Errorf("KioskService is not configured")
	}

	now := s.now()
	presentation = PresentationRecord{CorrelationID: s.idGenerator(), RawID: raw}
	updated = feed

	logger := s.loggerWith(ctx, "Scan", "correlation_id", presentation.CorrelationID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "scan failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("presentation", presentation.Kind, "feed_length", len(updated)).InfoContext(ctx, "scan handled")
	}()

	employee, resolveErr := s.resolver.Resolve(ctx, raw)
	if resolveErr != nil {
		if !errors.Is(resolveErr, ErrNotFound) {
			err = resolveErr
			return
		}
		presentation.Kind = PresentationInvalidID
		presentation.Message = fmt.Sprintf("invalid ID: %s", raw)
		entry := ActivityEntry{RawID: raw, ScannedAt: now}
		updated = PushActivity(feed, entry, s.feedMax)
		s.publish(entry)
		return
	}

	presentation.Employee = &employee

	outcome, recordErr := s.attendance.RecordScan(ctx, employee, now)
	if recordErr != nil {
		if !errors.Is(recordErr, ErrScanSuppressed) {
			err = recordErr
			return
		}
		presentation.Kind = PresentationSuppressed
		presentation.Message = "scan ignored"
		return
	}

	presentation.Kind = PresentationRecorded
	presentation.Outcome = &outcome
	presentation.Message = fmt.Sprintf("%s %s %s", outcome.DisplayName, outcome.Direction, outcome.Timestamp)

	entry := ActivityEntry{Outcome: &outcome, RawID: raw, ScannedAt: now}
	updated = PushActivity(feed, entry, s.feedMax)
	s.publish(entry)
	return
}

func (s *KioskService) publish(entry ActivityEntry) {
	if s.publisher != nil {
		s.publisher.Publish(entry)
	}
}
