package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/example/timeclock-kiosk/internal/application"
	"github.com/example/timeclock-kiosk/internal/config"
	httptransport "github.com/example/timeclock-kiosk/internal/http"
	"github.com/example/timeclock-kiosk/internal/logging"
	"github.com/example/timeclock-kiosk/internal/persistence/sqlite"
	"github.com/example/timeclock-kiosk/internal/persistence/sqlite/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "timeclock:", err)
		os.Exit(1)
	}
}

type options struct {
	envFile string
	sweep   bool
	before  string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("timeclock", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.envFile, "env", config.DefaultEnvFile, "optional .env file")
	fs.BoolVar(&opts.sweep, "sweep", false, "close open shifts from earlier days and exit")
	fs.StringVar(&opts.before, "before", "", "sweep shifts whose work date is before this day (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.before != "" && !opts.sweep {
		return options{}, errors.New("-before requires -sweep")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(opts.envFile)
	if err != nil {
		return err
	}
	logger := logging.New(stdout, cfg.LogLevel, "timeclock")

	pool, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		return err
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	app := newApp(cfg, pool, logger)
	defer app.hub.Close()

	if opts.sweep {
		return runSweep(ctx, app.report, opts.before, cfg.Location, logger)
	}
	return serve(ctx, cfg, app.handler, logger)
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlite.ConnectionPool, error) {
	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLitePath))
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx, logger); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

type app struct {
	report  *application.ReportService
	hub     *httptransport.ActivityHub
	handler http.Handler
}

func newApp(cfg config.Config, pool *sqlite.ConnectionPool, logger *slog.Logger) *app {
	directory := application.NewDirectoryAdapter(sqlite.NewEmployeeRepository(pool))
	ledger := application.NewLedgerAdapter(sqlite.NewShiftRepository(pool, cfg.Location))

	hub := httptransport.NewActivityHub(cfg.FeedMax, logger)

	resolver := application.NewIdentityResolver(directory, logger)
	attendance := application.NewAttendanceService(ledger, application.AttendanceOptions{
		Debounce: cfg.Debounce,
		Location: cfg.Location,
	}, logger)
	kiosk := application.NewKioskService(resolver, attendance, application.KioskOptions{
		FeedMax:     cfg.FeedMax,
		Publisher:   hub,
		IDGenerator: uuid.NewString,
		Now:         time.Now,
	}, logger)
	search := application.NewSearchService(directory, ledger, application.SearchOptions{
		HistoryLimit: cfg.HistoryLimit,
		CacheTTL:     cfg.SearchCacheTTL,
		Location:     cfg.Location,
	}, logger)
	directoryService := application.NewDirectoryService(directory, ledger, application.DirectoryOptions{
		HistoryLimit: cfg.HistoryLimit,
		Location:     cfg.Location,
		OnChange:     search.InvalidateCache,
	}, logger)
	report := application.NewReportService(ledger, time.Now, cfg.Location, logger)

	var operator func(http.Handler) http.Handler
	if cfg.OperatorEnabled() {
		operator = httptransport.RequireOperator(httptransport.OperatorCredentials{
			User:         cfg.OperatorUser,
			PasswordHash: cfg.OperatorPasswordHash,
		}, logger)
	} else {
		logger.Warn("operator credentials not configured, import and sweep routes are disabled")
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Scans:     httptransport.NewScanHandler(kiosk, logger),
		Search:    httptransport.NewSearchHandler(search, logger),
		Employees: httptransport.NewEmployeeHandler(directoryService, logger),
		Shifts:    httptransport.NewShiftHandler(report, cfg.Location, logger),
		Health:    httptransport.NewHealthHandler(pool, logger),
		Activity:  hub,
		Operator:  operator,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	return &app{report: report, hub: hub, handler: handler}
}

func runSweep(ctx context.Context, report *application.ReportService, before string, location *time.Location, logger *slog.Logger) error {
	var day time.Time
	if before != "" {
		parsed, err := time.ParseInLocation(application.WorkDateLayout, before, location)
		if err != nil {
			return fmt.Errorf("invalid -before %q: %w", before, err)
		}
		day = parsed
	}

	result, err := report.Sweep(ctx, day)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "before", result.Before.Format(application.WorkDateLayout), "closed", result.Closed)
	return nil
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timeclock kiosk listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		return err
	}
	return nil
}
