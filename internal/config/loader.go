package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by RESERVATIONS_STORE.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort       int
	Store          string
	SQLiteDSN      string
	DatabaseURL    string
	AdminTokenHash string
	RoomCacheTTL   time.Duration
	LogLevel       string
	LogFormat      string
}

// Load reads an optional .env file from the working directory and then parses
// the process environment.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles loads the given dotenv files, ignoring ones that do not exist, and
// parses the resulting environment. Variables already set in the process take
// precedence over file entries.
//
// Missing and invalid entries are reported together in one error.
func LoadFiles(paths ...string) (Config, error) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := Config{
		HTTPPort:     8080,
		Store:        StoreSQLite,
		SQLiteDSN:    "reservations.db",
		RoomCacheTTL: 30 * time.Second,
		LogLevel:     "info",
		LogFormat:    "json",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("RESERVATIONS_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "RESERVATIONS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(env("RESERVATIONS_STORE")); store != "" {
		switch store {
		case StoreSQLite, StorePostgres, StoreMemory:
			cfg.Store = store
		default:
			invalid = append(invalid, "RESERVATIONS_STORE")
		}
	}

	if dsn := env("RESERVATIONS_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.DatabaseURL = env("RESERVATIONS_DATABASE_URL")
	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "RESERVATIONS_DATABASE_URL")
	}

	if hash := env("RESERVATIONS_ADMIN_TOKEN_HASH"); hash != "" {
		if !strings.HasPrefix(hash, "$argon2id$") {
			invalid = append(invalid, "RESERVATIONS_ADMIN_TOKEN_HASH")
		} else {
			cfg.AdminTokenHash = hash
		}
	}

	if ttlValue := env("RESERVATIONS_ROOM_CACHE_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl < 0 {
			invalid = append(invalid, "RESERVATIONS_ROOM_CACHE_TTL")
		} else {
			cfg.RoomCacheTTL = ttl
		}
	}

	if level := strings.ToLower(env("RESERVATIONS_LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "RESERVATIONS_LOG_LEVEL")
		}
	}

	if format := strings.ToLower(env("RESERVATIONS_LOG_FORMAT")); format != "" {
		switch format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, "RESERVATIONS_LOG_FORMAT")
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
