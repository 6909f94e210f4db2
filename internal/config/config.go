package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/estategate.db"

	// DefaultCodeTTL applies when an estate has no visitor TTL override.
	DefaultCodeTTL time.Duration

	// Access log retention
	LogRetentionDays   int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

// FromEnv reads configuration from the environment, loading a local .env
// first when present.  Parsing is fail-soft: bad values fall back to
// defaults rather than stopping the server.
func FromEnv() Config {
	// Missing .env files are fine; env vars already set take precedence.
	_ = godotenv.Load()

	addr := getenvDefault("ESTATEGATE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("ESTATEGATE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("ESTATEGATE_DB_PATH", "./data/estategate.db")

	ttlMs := getenvInt("ESTATEGATE_DEFAULT_TTL_MS", 30*60*1000)
	if ttlMs <= 0 {
		ttlMs = 30 * 60 * 1000
	}

	retentionDays := getenvInt("ESTATEGATE_LOG_RETENTION_DAYS", 0)
	pruneInterval := getenvInt("ESTATEGATE_PRUNE_INTERVAL_HOURS", 6)

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		DefaultCodeTTL: time.Duration(ttlMs) * time.Millisecond,

		LogRetentionDays:   retentionDays,
		PruneIntervalHours: pruneInterval,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
