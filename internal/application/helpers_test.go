package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
	"github.com/example/timeclock-kiosk/internal/persistence/memory"
)

var kioskLocation = time.FixedZone("kiosk", -5*60*60)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryStores struct {
	store     *memory.Store
	directory *DirectoryAdapter
	ledger    *LedgerAdapter
}

func newMemoryStores(t *testing.T, employees ...persistence.Employee) memoryStores {
	t.Helper()

	store := memory.New(kioskLocation)
	for _, employee := range employees {
		if err := store.UpsertEmployee(context.Background(), employee); err != nil {
			t.Fatalf("seed employee %d: %v", employee.ID, err)
		}
	}
	return memoryStores{
		store:     store,
		directory: NewDirectoryAdapter(store),
		ledger:    NewLedgerAdapter(store),
	}
}

func hanSolo() persistence.Employee {
	return persistence.Employee{
		ID:         11111111,
		FirstName:  "Han",
		LastName:   "Solo",
		Email:      "han.solo@example.com",
		Phone:      "555-0100",
		Role:       "Pilot",
		Position:   "Captain",
		Department: "Smuggling",
	}
}

// ledgerStub wraps a ShiftLedger and lets tests inject failures.
type ledgerStub struct {
	ShiftLedger

	mu            sync.Mutex
	latestErr     error
	afterLatest   func()
	openErrs      []error
	closeErrs     []error
	historyErr    error
	openCalls     int
	closeCalls    int
	sweepBefore   time.Time
	sweepNotes    string
	sweepClosed   int64
	sweepErr      error
	openShifts    []OpenShift
	openShiftsErr error
}

func (l *ledgerStub) LatestShift(ctx context.Context, employeeID int64) (ShiftRecord, error) {
	if l.latestErr != nil {
		return ShiftRecord{}, l.latestErr
	}
	latest, err := l.ShiftLedger.LatestShift(ctx, employeeID)

	// afterLatest runs once, between the caller's read and its write.
	l.mu.Lock()
	hook := l.afterLatest
	l.afterLatest = nil
	l.mu.Unlock()
	if hook != nil {
		hook()
	}
	return latest, err
}

func (l *ledgerStub) OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (ShiftRecord, error) {
	l.mu.Lock()
	l.openCalls++
	var injected error
	if len(l.openErrs) > 0 {
		injected, l.openErrs = l.openErrs[0], l.openErrs[1:]
	}
	l.mu.Unlock()
	if injected != nil {
		return ShiftRecord{}, injected
	}
	return l.ShiftLedger.OpenShift(ctx, employeeID, afterShiftID, clockIn, workDate)
}

func (l *ledgerStub) CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (ShiftRecord, error) {
	l.mu.Lock()
	l.closeCalls++
	var injected error
	if len(l.closeErrs) > 0 {
		injected, l.closeErrs = l.closeErrs[0], l.closeErrs[1:]
	}
	l.mu.Unlock()
	if injected != nil {
		return ShiftRecord{}, injected
	}
	return l.ShiftLedger.CloseShift(ctx, employeeID, shiftID, clockOut)
}

func (l *ledgerStub) ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]ShiftRecord, error) {
	if l.historyErr != nil {
		return nil, l.historyErr
	}
	return l.ShiftLedger.ShiftHistory(ctx, employeeID, limit)
}

func (l *ledgerStub) ListOpenShifts(ctx context.Context) ([]OpenShift, error) {
	if l.openShiftsErr != nil {
		return nil, l.openShiftsErr
	}
	if l.openShifts != nil {
		return l.openShifts, nil
	}
	return l.ShiftLedger.ListOpenShifts(ctx)
}

func (l *ledgerStub) CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error) {
	l.sweepBefore = workDateBefore
	l.sweepNotes = notes
	if l.sweepErr != nil {
		return 0, l.sweepErr
	}
	return l.sweepClosed, nil
}

type directoryStub struct {
	EmployeeDirectory

	mu        sync.Mutex
	getErr    error
	listErr   error
	upsertErr error
	listCalls int
	upserted  []Employee
}

func (d *directoryStub) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	if d.getErr != nil {
		return Employee{}, d.getErr
	}
	return d.EmployeeDirectory.GetEmployee(ctx, id)
}

func (d *directoryStub) ListEmployees(ctx context.Context) ([]Employee, error) {
	d.mu.Lock()
	d.listCalls++
	d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.EmployeeDirectory.ListEmployees(ctx)
}

func (d *directoryStub) UpsertEmployee(ctx context.Context, employee Employee) error {
	if d.upsertErr != nil {
		return d.upsertErr
	}
	d.upserted = append(d.upserted, employee)
	return d.EmployeeDirectory.UpsertEmployee(ctx, employee)
}

type publisherStub struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (p *publisherStub) Publish(entry ActivityEntry) {
	p.mu.Lock()
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
}
