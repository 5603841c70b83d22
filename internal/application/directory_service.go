package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// DirectoryService serves employee lookups and operator directory imports.
type DirectoryService struct {
	directory    EmployeeDirectory
	ledger       ShiftLedger
	historyLimit int
	location     *time.Location
	onChange     func()
	logger       *slog.Logger
}

// DirectoryOptions configures a DirectoryService.
type DirectoryOptions struct {
	HistoryLimit int
	Location     *time.Location
	// OnChange runs after every successful upsert.
	OnChange func()
}

// NewDirectoryService constructs the directory service.
func NewDirectoryService(directory EmployeeDirectory, ledger ShiftLedger, opts DirectoryOptions, logger *slog.Logger) *DirectoryService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &DirectoryService{
		directory:    directory,
		ledger:       ledger,
		historyLimit: opts.HistoryLimit,
		location:     opts.Location,
		onChange:     opts.OnChange,
		logger:       defaultLogger(logger),
	}
}

func (s *DirectoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DirectoryService", operation, attrs...)
}

// GetEmployee returns the employee with up to limit recent shifts. A
// non-positive limit uses the configured default.
func (s *DirectoryService) GetEmployee(ctx context.Context, id int64, limit int) (detail EmployeeDetail, err error) {
	if s == nil {
		err = fmt.Errorf("DirectoryService is nil")
		return
	}
	if s.directory == nil || s.ledger == nil {
		err = storageError(errors.New("directory not configured"))
		return
	}

	logger := s.loggerWith(ctx, "GetEmployee", "employee_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("shift_count", len(detail.Shifts)).InfoContext(ctx, "employee retrieved")
	}()

	if limit <= 0 {
		limit = s.historyLimit
	}

	var employee Employee
	employee, err = s.directory.GetEmployee(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			err = storageError(err)
		}
		return
	}

	var history []ShiftRecord
	history, err = s.ledger.ShiftHistory(ctx, id, limit)
	if err != nil {
		err = storageError(err)
		return
	}

	detail = EmployeeDetail{Employee: employee, Shifts: summarizeShifts(history, s.location)}
	return
}

// UpsertEmployee validates operator input and stores the employee.
func (s *DirectoryService) UpsertEmployee(ctx context.Context, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("DirectoryService is nil")
		return
	}
	if s.directory == nil {
		err = storageError(errors.New("directory not configured"))
		return
	}

	logger := s.loggerWith(ctx, "UpsertEmployee", "employee_id", input.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "employee upserted")
	}()

	vErr := validateEmployeeInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	employee = Employee{
		ID:         input.ID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		PhotoPath:  strings.TrimSpace(input.PhotoPath),
		Role:       strings.TrimSpace(input.Role),
		Position:   strings.TrimSpace(input.Position),
		Department: strings.TrimSpace(input.Department),
	}

	if err = s.directory.UpsertEmployee(ctx, employee); err != nil {
		var repoVErr *ValidationError
		if !errors.As(err, &repoVErr) {
			err = storageError(err)
		}
		employee = Employee{}
		return
	}

	if s.onChange != nil {
		s.onChange()
	}
	return
}

func validateEmployeeInput(input EmployeeInput) *ValidationError {
	vErr := &ValidationError{}

	if input.ID < 0 {
		vErr.add("employee_id", "employee id must not be negative")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		vErr.add("first_name", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.add("last_name", "last name is required")
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			vErr.add("email", "email is invalid")
		}
	}

	return vErr
}
