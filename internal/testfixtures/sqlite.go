package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence/sqlite"
	"github.com/example/timeclock-kiosk/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Employees *sqlite.EmployeeRepository
	Shifts    *sqlite.ShiftRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Work dates are computed in location; nil means UTC.
// Callers may invoke Close, but the helper also registers a cleanup callback
// with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB, location *time.Location) *SQLiteHarness {
	tb.Helper()

	if location == nil {
		location = time.UTC
	}
	path := filepath.Join(tb.TempDir(), "timeclock.db")

	pool, err := sqlite.NewConnectionPool(migration.TestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := pool.Migrate(context.Background(), logger); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:      pool,
		Employees: sqlite.NewEmployeeRepository(pool),
		Shifts:    sqlite.NewShiftRepository(pool, location),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
