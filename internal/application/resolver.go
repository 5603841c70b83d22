package application

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// IdentityResolver turns a scanned badge value into an employee.
type IdentityResolver struct {
	directory EmployeeDirectory
	logger    *slog.Logger
}

// NewIdentityResolver constructs a resolver over directory.
func NewIdentityResolver(directory EmployeeDirectory, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{directory: directory, logger: defaultLogger(logger)}
}

// ParseEmployeeID accepts a scanned value made only of ASCII digits, ignoring
// surrounding whitespace. Signs, spaces inside the value and overflow are rejected.
func ParseEmployeeID(raw string) (int64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Resolve returns the employee for raw, ErrNotFound when raw is malformed or
// unknown, or an ErrStorageUnavailable error when the directory fails.
func (r *IdentityResolver) Resolve(ctx context.Context, raw string) (Employee, error) {
	id, ok := ParseEmployeeID(raw)
	if !ok {
		serviceLogger(ctx, r.logger, "IdentityResolver", "Resolve").
			DebugContext(ctx, "scanned value is not an employee id", "raw_length", len(raw))
		return Employee{}, ErrNotFound
	}

	if r.directory == nil {
		return Employee{}, storageError(errors.New("employee directory not configured"))
	}

	employee, err := r.directory.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, storageError(err)
	}
	return employee, nil
}
