package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/timeclock-kiosk/internal/application"
)

// maxRequestBodyBytes caps JSON request bodies, including the caller's feed.
const maxRequestBodyBytes = 1 << 20

var (
	errBadRequestBody     = errors.New("invalid request body")
	errInvalidEmployeeID  = errors.New("invalid employee id")
	errInvalidLimit       = errors.New("limit must be a positive integer")
	errInvalidSweepDate   = errors.New("before must be a date in YYYY-MM-DD form")
	errOperatorDisabled   = errors.New("operator routes are disabled")
	errOperatorCredential = errors.New("operator credentials are required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "employee not found"})
	case errors.Is(err, application.ErrUnknownSearchField):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "UNKNOWN_SEARCH_FIELD", Message: "unknown search field"})
	case errors.Is(err, application.ErrLedgerConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "LEDGER_CONFLICT", Message: statusMessage(http.StatusConflict)})
	case errors.Is(err, application.ErrStorageUnavailable):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{ErrorCode: "STORAGE_UNAVAILABLE", Message: statusMessage(http.StatusServiceUnavailable)})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: "VALIDATION_FAILED",
				Message:   statusMessage(http.StatusUnprocessableEntity),
				Errors:    vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is malformed"
	case http.StatusUnauthorized:
		return "authentication is required"
	case http.StatusForbidden:
		return "the operation is not permitted"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusConflict:
		return "the request conflicts with the current state"
	case http.StatusUnprocessableEntity:
		return "the input is invalid"
	case http.StatusServiceUnavailable:
		return "storage is temporarily unavailable"
	default:
		return "an internal error occurred"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
