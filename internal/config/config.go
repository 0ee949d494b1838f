// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// DatabasePath is the filesystem path of the SQLite database file.
	DatabasePath string
	// KeystorePath is the filesystem path of the wrapped-key file. It is a
	// separate artifact from the database so key material and table data can
	// be backed up or wiped independently.
	KeystorePath string
	// DBBusyTimeout is the SQLite busy timeout applied at connect time.
	DBBusyTimeout time.Duration

	// KeeperURI selects the gocloud.dev secrets keeper that wraps the device
	// key (e.g., "base64key://...", "hashivault://keyname"). The wrapping
	// secret itself lives outside the data directory.
	KeeperURI string

	// KDFIterations is the PBKDF2 iteration count for password-derived keys.
	KDFIterations int
	// UnlockMaxAttempts is the number of password unlock attempts allowed per
	// UnlockWindow before attempts are rejected.
	UnlockMaxAttempts int
	// UnlockWindow is the sliding window for unlock attempt throttling.
	UnlockWindow time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsHost is the host address the metrics server will bind to.
	MetricsHost string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Storage artifacts
		DatabasePath:  env.GetString("FINSTORE_DATABASE_PATH", "finstore.db"),
		KeystorePath:  env.GetString("FINSTORE_KEYSTORE_PATH", "finstore.keys.json"),
		DBBusyTimeout: env.GetDuration("FINSTORE_DB_BUSY_TIMEOUT_MS", 5000, time.Millisecond),

		// Key wrapping
		KeeperURI: env.GetString("FINSTORE_KEEPER_URI", ""),

		// Password-derived key mode
		KDFIterations:     env.GetInt("FINSTORE_KDF_ITERATIONS", 100000),
		UnlockMaxAttempts: env.GetInt("FINSTORE_UNLOCK_MAX_ATTEMPTS", 5),
		UnlockWindow:      env.GetDuration("FINSTORE_UNLOCK_WINDOW_SECONDS", 60, time.Second),

		// Logging
		LogLevel: env.GetString("FINSTORE_LOG_LEVEL", "info"),

		// Metrics
		MetricsEnabled:   env.GetBool("FINSTORE_METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("FINSTORE_METRICS_NAMESPACE", "finstore"),
		MetricsHost:      env.GetString("FINSTORE_METRICS_HOST", "127.0.0.1"),
		MetricsPort:      env.GetInt("FINSTORE_METRICS_PORT", 8081),
	}
}

// loadDotEnv attempts to load a .env file from the current directory or any parent.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
