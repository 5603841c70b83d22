package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/timeclock-kiosk/internal/application"
)

type employeeService interface {
	GetEmployee(ctx context.Context, id int64, limit int) (application.EmployeeDetail, error)
	UpsertEmployee(ctx context.Context, input application.EmployeeInput) (application.Employee, error)
}

// EmployeeHandler serves employee lookup and the operator directory import.
type EmployeeHandler struct {
	service   employeeService
	responder responder
	logger    *slog.Logger
}

func NewEmployeeHandler(service employeeService, logger *slog.Logger) *EmployeeHandler {
	base := defaultLogger(logger)
	return &EmployeeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EmployeeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EmployeeHandler", operation, attrs...)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := employeeIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid employee id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.log(r.Context(), "Get", "employee_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid history limit", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLimit)
		return
	}

	logger := h.log(r.Context(), "Get", "employee_id", id)

	detail, err := h.service.GetEmployee(r.Context(), id, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "employee lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "employee retrieved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, employeeDetailResponse{
		Employee: toEmployeeDTO(detail.Employee),
		Shifts:   toShiftSummaryDTOs(detail.Shifts),
	})
}

func (h *EmployeeHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := employeeIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Put", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid employee id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		h.log(r.Context(), "Put", "employee_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode employee", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Put", "employee_id", id)

	employee, err := h.service.UpsertEmployee(r.Context(), req.toInput(id))
	if err != nil {
		logger.ErrorContext(r.Context(), "employee import failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "employee imported")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, employeeResponse{Employee: toEmployeeDTO(employee)})
}

func employeeIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := EmployeeIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return application.ParseEmployeeID(raw)
}

func parseLimit(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, errInvalidLimit
	}
	return limit, nil
}

type employeeRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	PhotoPath  string `json:"photo_path"`
	Role       string `json:"role"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

func (r employeeRequest) toInput(id int64) application.EmployeeInput {
	return application.EmployeeInput{
		ID:         id,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		PhotoPath:  r.PhotoPath,
		Role:       r.Role,
		Position:   r.Position,
		Department: r.Department,
	}
}

type employeeResponse struct {
	Employee employeeDTO `json:"employee"`
}

type employeeDetailResponse struct {
	Employee employeeDTO       `json:"employee"`
	Shifts   []shiftSummaryDTO `json:"shifts"`
}

type employeeDTO struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	PhotoPath   string `json:"photo_path,omitempty"`
	Role        string `json:"role,omitempty"`
	Position    string `json:"position,omitempty"`
	Department  string `json:"department,omitempty"`
}

func toEmployeeDTO(employee application.Employee) employeeDTO {
	return employeeDTO{
		ID:          employee.ID,
		FirstName:   employee.FirstName,
		LastName:    employee.LastName,
		DisplayName: employee.DisplayName(),
		Email:       employee.Email,
		Phone:       employee.Phone,
		PhotoPath:   employee.PhotoPath,
		Role:        employee.Role,
		Position:    employee.Position,
		Department:  employee.Department,
	}
}

type shiftSummaryDTO struct {
	ShiftID  int64  `json:"shift_id"`
	WorkDate string `json:"work_date"`
	ClockIn  string `json:"clock_in"`
	ClockOut string `json:"clock_out"`
	Duration string `json:"duration"`
	Notes    string `json:"notes,omitempty"`
	Open     bool   `json:"open"`
}

func toShiftSummaryDTOs(shifts []application.ShiftSummary) []shiftSummaryDTO {
	out := make([]shiftSummaryDTO, 0, len(shifts))
	for _, shift := range shifts {
		out = append(out, shiftSummaryDTO{
			ShiftID:  shift.ShiftID,
			WorkDate: shift.WorkDate,
			ClockIn:  shift.ClockIn,
			ClockOut: shift.ClockOut,
			Duration: shift.Duration,
			Notes:    shift.Notes,
			Open:     shift.Open,
		})
	}
	return out
}
