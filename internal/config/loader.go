package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/timeclock-kiosk/internal/logging"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Config captures environment driven configuration values for the kiosk service.
type Config struct {
	HTTPPort       int
	SQLitePath     string
	Debounce       time.Duration
	FeedMax        int
	HistoryLimit   int
	Location       *time.Location
	SearchCacheTTL time.Duration
	LogLevel       slog.Level

	// Operator routes are disabled unless both values are set.
	OperatorUser         string
	OperatorPasswordHash string
}

// OperatorEnabled reports whether operator credentials are configured.
func (c Config) OperatorEnabled() bool {
	return c.OperatorUser != "" && c.OperatorPasswordHash != ""
}

// Load reads DefaultEnvFile, if any, and parses the process environment.
func Load() (Config, error) {
	return LoadFile(DefaultEnvFile)
}

// LoadFile loads variables from path into the environment without overriding
// values that are already set, then parses the environment. A missing file is
// not an error.
func LoadFile(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return parseEnvironment()
}

func parseEnvironment() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLitePath:     "timeclock.db",
		Debounce:       time.Second,
		FeedMax:        50,
		HistoryLimit:   10,
		Location:       time.Local,
		SearchCacheTTL: 30 * time.Second,
		LogLevel:       slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("TIMECLOCK_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "TIMECLOCK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := env("TIMECLOCK_SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	if debounceValue := env("TIMECLOCK_DEBOUNCE"); debounceValue != "" {
		debounce, err := time.ParseDuration(debounceValue)
		if err != nil || debounce < 0 {
			invalid = append(invalid, "TIMECLOCK_DEBOUNCE")
		} else {
			cfg.Debounce = debounce
		}
	}

	if feedValue := env("TIMECLOCK_FEED_MAX"); feedValue != "" {
		feedMax, err := strconv.Atoi(feedValue)
		if err != nil || feedMax <= 0 {
			invalid = append(invalid, "TIMECLOCK_FEED_MAX")
		} else {
			cfg.FeedMax = feedMax
		}
	}

	if limitValue := env("TIMECLOCK_HISTORY_LIMIT"); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "TIMECLOCK_HISTORY_LIMIT")
		} else {
			cfg.HistoryLimit = limit
		}
	}

	if zone := env("TIMECLOCK_TIMEZONE"); zone != "" {
		location, err := time.LoadLocation(zone)
		if err != nil {
			invalid = append(invalid, "TIMECLOCK_TIMEZONE")
		} else {
			cfg.Location = location
		}
	}

	if ttlValue := env("TIMECLOCK_SEARCH_CACHE_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl < 0 {
			invalid = append(invalid, "TIMECLOCK_SEARCH_CACHE_TTL")
		} else {
			cfg.SearchCacheTTL = ttl
		}
	}

	if levelValue := env("TIMECLOCK_LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "TIMECLOCK_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	user := env("TIMECLOCK_OPERATOR_USER")
	hash := env("TIMECLOCK_OPERATOR_PASSWORD_HASH")
	switch {
	case user != "" && hash == "":
		missing = append(missing, "TIMECLOCK_OPERATOR_PASSWORD_HASH")
	case user == "" && hash != "":
		missing = append(missing, "TIMECLOCK_OPERATOR_USER")
	case user != "":
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			invalid = append(invalid, "TIMECLOCK_OPERATOR_PASSWORD_HASH")
		} else {
			cfg.OperatorUser = user
			cfg.OperatorPasswordHash = hash
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
