// Package migration applies versioned SQL schema changes to the timeclock
// SQLite database.
//
// Migration files are named {version}_{description}.sql (for example
// "001_employees.sql") and are read from an fs.FS, normally the embedded
// migrations directory of the sqlite package. Each file runs inside its own
// transaction and is recorded in the schema_migrations table together with
// its SHA-256 checksum, so a file is never applied twice.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewFSSource(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
