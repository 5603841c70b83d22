package migration

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteConfig holds connection settings for the timeclock database.
type SQLiteConfig struct {
	// Path is the database file. MemoryPath opens an in-memory database.
	Path string

	// BusyTimeout sets how long a connection waits for a lock.
	BusyTimeout time.Duration

	// JournalMode is the SQLite journal mode (WAL, DELETE, MEMORY, ...).
	JournalMode string

	// Synchronous is the synchronous pragma (OFF, NORMAL, FULL).
	Synchronous string

	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// DefaultSQLiteConfig returns production settings for a database file.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:            path,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
		MaxOpenConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// TestSQLiteConfig returns fast settings for a temporary database file.
func TestSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:         path,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "MEMORY",
		Synchronous:  "OFF",
		MaxOpenConns: 1,
	}
}

// Validate reports configuration mistakes before a connection is attempted.
func (c SQLiteConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite path cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busy timeout cannot be negative")
	}
	if c.JournalMode != "" && !validJournalModes[c.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	if c.Synchronous != "" && !validSyncModes[c.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("max open connections cannot be negative")
	}
	return nil
}

// DSN renders the modernc.org/sqlite connection string. Pragmas are passed as
// _pragma parameters so every pooled connection gets them.
func (c SQLiteConfig) DSN() string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	if c.JournalMode != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	}
	if c.Synchronous != "" {
		params.Add("_pragma", fmt.Sprintf("synchronous(%s)", c.Synchronous))
	}
	params.Set("_txlock", "immediate")

	if c.Path == MemoryPath {
		return "file::memory:?" + params.Encode()
	}
	return "file:" + c.Path + "?" + params.Encode()
}

// Open validates the configuration, creates the parent directory, and returns
// a pinged *sql.DB.
func Open(config SQLiteConfig) (*sql.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sqlite configuration: %w", err)
	}

	if config.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if config.Path == MemoryPath || maxOpen == 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	if config.ConnMaxLifetime > 0 && config.Path != MemoryPath {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}
