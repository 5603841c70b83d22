package http

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// OperatorCredentials guard the directory import and sweep routes. An empty
// User disables those routes.
type OperatorCredentials struct {
	User         string
	PasswordHash string
}

// RequireOperator checks HTTP basic credentials against the configured
// operator using bcrypt.
func RequireOperator(credentials OperatorCredentials, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)
	hash := []byte(credentials.PasswordHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if credentials.User == "" || len(hash) == 0 {
				responder.writeError(r.Context(), w, http.StatusForbidden, errOperatorDisabled)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="timeclock"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errOperatorCredential)
				return
			}

			userMatches := subtle.ConstantTimeCompare([]byte(user), []byte(credentials.User)) == 1
			err := bcrypt.CompareHashAndPassword(hash, []byte(password))
			if !userMatches || err != nil {
				if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
					responder.loggerFor(r.Context()).ErrorContext(r.Context(), "operator hash check failed", "error", err)
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="timeclock"`)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "invalid operator credentials"})
				return
			}

			ctx := ContextWithOperator(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request scoped logger tagged with a request id. A
// well-formed incoming X-Request-ID is reused.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades pass through the logger.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
