package http

import (
	"context"
	"log/slog"

	"github.com/example/timeclock-kiosk/internal/logging"
)

type contextKey string

const (
	employeeIDContextKey contextKey = "employee_id"
	operatorContextKey   contextKey = "operator"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithEmployeeID injects the employee identifier resolved from the request path.
func ContextWithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, employeeIDContextKey, employeeID)
}

// EmployeeIDFromContext extracts an employee identifier previously associated with the context.
func EmployeeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(employeeIDContextKey).(string)
	return id, ok
}

// ContextWithOperator records the authenticated operator name.
func ContextWithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorContextKey, operator)
}

// OperatorFromContext returns the authenticated operator name, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorContextKey).(string)
	return operator, ok
}
