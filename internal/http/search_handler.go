package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/timeclock-kiosk/internal/application"
)

type searchService interface {
	Search(ctx context.Context, params application.SearchParams) ([]application.MatchedEmployee, error)
}

// SearchHandler serves GET /search?q=&field=&limit=.
type SearchHandler struct {
	service   searchService
	responder responder
	logger    *slog.Logger
}

func NewSearchHandler(service searchService, logger *slog.Logger) *SearchHandler {
	base := defaultLogger(logger)
	return &SearchHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SearchHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SearchHandler", operation, attrs...)
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	field := query.Get("field")

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		h.log(r.Context(), "Search", "field", field, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid history limit", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLimit)
		return
	}

	logger := h.log(r.Context(), "Search", "field", field)

	matches, err := h.service.Search(r.Context(), application.SearchParams{
		Query:        query.Get("q"),
		Field:        field,
		HistoryLimit: limit,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "search failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(matches)).InfoContext(r.Context(), "search completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, searchResponse{Matches: toMatchDTOs(matches)})
}

type searchResponse struct {
	Matches []matchDTO `json:"matches"`
}

type matchDTO struct {
	Employee employeeDTO       `json:"employee"`
	Score    int               `json:"score"`
	Shifts   []shiftSummaryDTO `json:"shifts"`
}

func toMatchDTOs(matches []application.MatchedEmployee) []matchDTO {
	out := make([]matchDTO, 0, len(matches))
	for _, match := range matches {
		out = append(out, matchDTO{
			Employee: toEmployeeDTO(match.Employee),
			Score:    match.Score,
			Shifts:   toShiftSummaryDTOs(match.Shifts),
		})
	}
	return out
}
