package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager orchestrates applying pending migrations from a Source.
type Manager struct {
	source   Source
	executor Executor
	logger   *slog.Logger
}

// NewManager wires a Manager. A nil logger falls back to slog.Default.
func NewManager(source Source, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{source: source, executor: executor, logger: logger.With("component", "migration")}
}

// RunMigrations applies every pending migration in version order. It stops at
// the first failure; migrations applied before the failure stay applied.
func (m *Manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if len(status.Pending) == 0 {
		m.logger.InfoContext(ctx, "database schema up to date", "version", status.CurrentVersion)
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending),
	)

	for _, migration := range status.Pending {
		logger := m.logger.With("version", migration.Version, "description", migration.Description)
		migrationStart := time.Now()

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return err
		}

		elapsed := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			logger.ErrorContext(ctx, "failed to record migration", "error", err)
			return err
		}

		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	m.logger.InfoContext(ctx, "migrations completed",
		"applied", len(status.Pending),
		"version", status.Pending[len(status.Pending)-1].Version,
		"duration", time.Since(start),
	)
	return nil
}

// Status compares the source against schema_migrations. It fails when the
// available versions have gaps, when an applied version has no file, or when
// an applied file's checksum changed.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := m.source.Migrations()
	if err != nil {
		return Status{}, err
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, err
	}

	if err := validateSequence(available); err != nil {
		return Status{}, err
	}

	byVersion := make(map[int]Migration, len(available))
	for _, migration := range available {
		byVersion[versionNumber(migration.Version)] = migration
	}

	status := Status{Applied: applied}
	appliedSet := make(map[int]struct{}, len(applied))
	current := -1
	for _, row := range applied {
		version := versionNumber(row.Version)
		migration, ok := byVersion[version]
		if !ok {
			return Status{}, fmt.Errorf("%w: %s", ErrUnknownAppliedVersion, row.Version)
		}
		if row.Checksum != "" && row.Checksum != migration.Checksum {
			return Status{}, newMigrationError(migration, "verify checksum", ErrChecksumMismatch)
		}
		appliedSet[version] = struct{}{}
		if version > current {
			current = version
			status.CurrentVersion = row.Version
		}
	}

	for _, migration := range available {
		if _, ok := appliedSet[versionNumber(migration.Version)]; !ok {
			status.Pending = append(status.Pending, migration)
		}
	}

	return status, nil
}

func validateSequence(migrations []Migration) error {
	if len(migrations) == 0 {
		return nil
	}
	expected := versionNumber(migrations[0].Version)
	for _, migration := range migrations {
		version := versionNumber(migration.Version)
		if version != expected {
			return fmt.Errorf("%w: expected %03d, found %s", ErrVersionGap, expected, migration.Version)
		}
		expected++
	}
	return nil
}
