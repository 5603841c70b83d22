package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/timeclock-kiosk/internal/application"
)

type scanService interface {
	Scan(ctx context.Context, raw string, feed application.Feed) (application.PresentationRecord, application.Feed, error)
}

// ScanHandler serves POST /scans. The caller owns the feed and sends it with
// every scan; the response carries the updated feed.
type ScanHandler struct {
	service   scanService
	responder responder
	logger    *slog.Logger
}

func NewScanHandler(service scanService, logger *slog.Logger) *ScanHandler {
	base := defaultLogger(logger)
	return &ScanHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScanHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScanHandler", operation, attrs...)
}

func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode scan request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "feed_length", len(req.Feed))

	presentation, feed, err := h.service.Scan(r.Context(), req.RawID, toFeed(req.Feed))
	if err != nil {
		logger.ErrorContext(r.Context(), "scan failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("presentation", presentation.Kind).InfoContext(r.Context(), "scan handled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scanResponse{
		Presentation: toPresentationDTO(presentation),
		Feed:         toActivityDTOs(feed),
	})
}

type scanRequest struct {
	RawID string             `json:"raw_id"`
	Feed  []activityEntryDTO `json:"feed"`
}

type scanResponse struct {
	Presentation presentationDTO    `json:"presentation"`
	Feed         []activityEntryDTO `json:"feed"`
}

type presentationDTO struct {
	Kind          string          `json:"kind"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	RawID         string          `json:"raw_id"`
	Employee      *employeeDTO    `json:"employee,omitempty"`
	Outcome       *scanOutcomeDTO `json:"outcome,omitempty"`
	Message       string          `json:"message"`
}

type scanOutcomeDTO struct {
	EmployeeID  int64     `json:"employee_id"`
	DisplayName string    `json:"display_name"`
	Direction   string    `json:"direction"`
	ShiftID     int64     `json:"shift_id"`
	EventTime   time.Time `json:"event_time"`
	Timestamp   string    `json:"timestamp"`
	Worked      string    `json:"worked,omitempty"`
}

type activityEntryDTO struct {
	RawID      string          `json:"raw_id"`
	ScannedAt  time.Time       `json:"scanned_at"`
	Unresolved bool            `json:"unresolved"`
	Outcome    *scanOutcomeDTO `json:"outcome,omitempty"`
}

func toPresentationDTO(p application.PresentationRecord) presentationDTO {
	dto := presentationDTO{
		Kind:          string(p.Kind),
		CorrelationID: p.CorrelationID,
		RawID:         p.RawID,
		Message:       p.Message,
	}
	if p.Employee != nil {
		employee := toEmployeeDTO(*p.Employee)
		dto.Employee = &employee
	}
	if p.Outcome != nil {
		dto.Outcome = toScanOutcomeDTO(p.Outcome)
	}
	return dto
}

func toScanOutcomeDTO(outcome *application.ScanOutcome) *scanOutcomeDTO {
	if outcome == nil {
		return nil
	}
	return &scanOutcomeDTO{
		EmployeeID:  outcome.EmployeeID,
		DisplayName: outcome.DisplayName,
		Direction:   string(outcome.Direction),
		ShiftID:     outcome.ShiftID,
		EventTime:   outcome.EventTime,
		Timestamp:   outcome.Timestamp,
		Worked:      outcome.Worked,
	}
}

func toActivityDTO(entry application.ActivityEntry) activityEntryDTO {
	return activityEntryDTO{
		RawID:      entry.RawID,
		ScannedAt:  entry.ScannedAt,
		Unresolved: entry.Unresolved(),
		Outcome:    toScanOutcomeDTO(entry.Outcome),
	}
}

func toActivityDTOs(feed application.Feed) []activityEntryDTO {
	out := make([]activityEntryDTO, 0, len(feed))
	for _, entry := range feed {
		out = append(out, toActivityDTO(entry))
	}
	return out
}

// toFeed rebuilds a feed sent back by the client. Unresolved wins over any
// outcome the client attached.
func toFeed(dtos []activityEntryDTO) application.Feed {
	if len(dtos) == 0 {
		return nil
	}
	feed := make(application.Feed, 0, len(dtos))
	for _, dto := range dtos {
		entry := application.ActivityEntry{RawID: dto.RawID, ScannedAt: dto.ScannedAt}
		if dto.Outcome != nil && !dto.Unresolved {
			entry.Outcome = &application.ScanOutcome{
				EmployeeID:  dto.Outcome.EmployeeID,
				DisplayName: dto.Outcome.DisplayName,
				Direction:   application.Direction(dto.Outcome.Direction),
				ShiftID:     dto.Outcome.ShiftID,
				EventTime:   dto.Outcome.EventTime,
				Timestamp:   dto.Outcome.Timestamp,
				Worked:      dto.Outcome.Worked,
			}
		}
		feed = append(feed, entry)
	}
	return feed
}
