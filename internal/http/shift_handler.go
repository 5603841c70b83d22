package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/timeclock-kiosk/internal/application"
)

type reportService interface {
	OpenShifts(ctx context.Context) ([]application.OpenShift, error)
	Sweep(ctx context.Context, before time.Time) (application.SweepResult, error)
}

// ShiftHandler serves the clocked-in report and the end-of-day sweep.
type ShiftHandler struct {
	service   reportService
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

// NewShiftHandler parses sweep dates in location; nil means time.Local.
func NewShiftHandler(service reportService, location *time.Location, logger *slog.Logger) *ShiftHandler {
	base := defaultLogger(logger)
	if location == nil {
		location = time.Local
	}
	return &ShiftHandler{service: service, location: location, responder: newResponder(base), logger: base}
}

func (h *ShiftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ShiftHandler", operation, attrs...)
}

func (h *ShiftHandler) Open(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Open")

	open, err := h.service.OpenShifts(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "open shift report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("open_count", len(open)).InfoContext(r.Context(), "open shifts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, openShiftsResponse{Shifts: h.toOpenShiftDTOs(open)})
}

func (h *ShiftHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var before time.Time
	if value := strings.TrimSpace(r.URL.Query().Get("before")); value != "" {
		parsed, err := time.ParseInLocation(application.WorkDateLayout, value, h.location)
		if err != nil {
			h.log(r.Context(), "Sweep", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid sweep date", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSweepDate)
			return
		}
		before = parsed
	}

	logger := h.log(r.Context(), "Sweep")

	result, err := h.service.Sweep(r.Context(), before)
	if err != nil {
		logger.ErrorContext(r.Context(), "sweep failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("closed", result.Closed).InfoContext(r.Context(), "sweep completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sweepResponse{
		Before: result.Before.In(h.location).Format(application.WorkDateLayout),
		Closed: result.Closed,
	})
}

type openShiftsResponse struct {
	Shifts []openShiftDTO `json:"shifts"`
}

type openShiftDTO struct {
	ShiftID  int64       `json:"shift_id"`
	Employee employeeDTO `json:"employee"`
	WorkDate string      `json:"work_date"`
	ClockIn  time.Time   `json:"clock_in"`
}

func (h *ShiftHandler) toOpenShiftDTOs(open []application.OpenShift) []openShiftDTO {
	out := make([]openShiftDTO, 0, len(open))
	for _, item := range open {
		out = append(out, openShiftDTO{
			ShiftID:  item.Shift.ID,
			Employee: toEmployeeDTO(item.Employee),
			WorkDate: item.Shift.WorkDate.In(h.location).Format(application.WorkDateLayout),
			ClockIn:  item.Shift.ClockIn.In(h.location),
		})
	}
	return out
}

type sweepResponse struct {
	Before string `json:"before"`
	Closed int64  `json:"closed"`
}
