package testfixtures

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/application"
	"github.com/example/timeclock-kiosk/internal/persistence"
	"github.com/example/timeclock-kiosk/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers, clocks and a fixed kiosk location.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("scan"),
		Location:    time.UTC,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("scan")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the correlation identifier generator.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation overrides the kiosk location used for work dates and display.
func WithLocation(location *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = location
	}
}

// WithLogger overrides the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Stores pairs the application ports a service set runs against.
type Stores struct {
	Directory application.EmployeeDirectory
	Ledger    application.ShiftLedger
}

// AdaptStores wraps persistence implementations in the application adapters.
func AdaptStores(directory persistence.EmployeeDirectory, ledger persistence.ShiftLedger) Stores {
	return Stores{
		Directory: application.NewDirectoryAdapter(directory),
		Ledger:    application.NewLedgerAdapter(ledger),
	}
}

// MemoryStores returns adapted in-memory stores in the factory location.
func (f *ServiceFactory) MemoryStores() Stores {
	store := memory.New(f.Location)
	return AdaptStores(store, store)
}

// SQLiteStores returns adapted stores over a migrated temporary database.
func (f *ServiceFactory) SQLiteStores(tb testing.TB) Stores {
	tb.Helper()
	harness := NewSQLiteHarness(tb, f.Location)
	return AdaptStores(harness.Employees, harness.Shifts)
}

// KioskServiceDeps captures dependencies for constructing a kiosk service.
type KioskServiceDeps struct {
	Stores    Stores
	Debounce  time.Duration
	FeedMax   int
	Publisher application.ActivityPublisher
}

// NewKioskService builds the scan pipeline with the factory clock and ids.
func (f *ServiceFactory) NewKioskService(deps KioskServiceDeps) *application.KioskService {
	resolver := application.NewIdentityResolver(deps.Stores.Directory, f.Logger)
	attendance := application.NewAttendanceService(deps.Stores.Ledger, application.AttendanceOptions{
		Debounce: deps.Debounce,
		Location: f.Location,
	}, f.Logger)
	return application.NewKioskService(resolver, attendance, application.KioskOptions{
		FeedMax:     deps.FeedMax,
		Publisher:   deps.Publisher,
		IDGenerator: f.IDGenerator.NextFunc(),
		Now:         f.Clock.NowFunc(),
	}, f.Logger)
}

// NewSearchService builds a search service. A zero cacheTTL disables caching.
func (f *ServiceFactory) NewSearchService(stores Stores, historyLimit int, cacheTTL time.Duration) *application.SearchService {
	return application.NewSearchService(stores.Directory, stores.Ledger, application.SearchOptions{
		HistoryLimit: historyLimit,
		CacheTTL:     cacheTTL,
		Location:     f.Location,
	}, f.Logger)
}

// NewDirectoryService builds a directory service; onChange may be nil.
func (f *ServiceFactory) NewDirectoryService(stores Stores, onChange func()) *application.DirectoryService {
	return application.NewDirectoryService(stores.Directory, stores.Ledger, application.DirectoryOptions{
		Location: f.Location,
		OnChange: onChange,
	}, f.Logger)
}

// NewReportService builds a report service driven by the factory clock.
func (f *ServiceFactory) NewReportService(stores Stores) *application.ReportService {
	return application.NewReportService(stores.Ledger, f.Clock.NowFunc(), f.Location, f.Logger)
}
