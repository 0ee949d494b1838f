package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "finstore.db", cfg.DatabasePath)
				assert.Equal(t, "finstore.keys.json", cfg.KeystorePath)
				assert.Equal(t, 5*time.Second, cfg.DBBusyTimeout)
				assert.Equal(t, "", cfg.KeeperURI)
				assert.Equal(t, 100000, cfg.KDFIterations)
				assert.Equal(t, 5, cfg.UnlockMaxAttempts)
				assert.Equal(t, time.Minute, cfg.UnlockWindow)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "finstore", cfg.MetricsNamespace)
				assert.Equal(t, "127.0.0.1", cfg.MetricsHost)
				assert.Equal(t, 8081, cfg.MetricsPort)
			},
		},
		{
			name: "load custom storage configuration",
			envVars: map[string]string{
				"FINSTORE_DATABASE_PATH":      "/data/money.db",
				"FINSTORE_KEYSTORE_PATH":      "/data/money.keys.json",
				"FINSTORE_DB_BUSY_TIMEOUT_MS": "2500",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/money.db", cfg.DatabasePath)
				assert.Equal(t, "/data/money.keys.json", cfg.KeystorePath)
				assert.Equal(t, 2500*time.Millisecond, cfg.DBBusyTimeout)
			},
		},
		{
			name: "load custom key wrapping configuration",
			envVars: map[string]string{
				"FINSTORE_KEEPER_URI":     "base64key://c2VjcmV0",
				"FINSTORE_KDF_ITERATIONS": "250000",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "base64key://c2VjcmV0", cfg.KeeperURI)
				assert.Equal(t, 250000, cfg.KDFIterations)
			},
		},
		{
			name: "load custom unlock throttle configuration",
			envVars: map[string]string{
				"FINSTORE_UNLOCK_MAX_ATTEMPTS":   "3",
				"FINSTORE_UNLOCK_WINDOW_SECONDS": "30",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.UnlockMaxAttempts)
				assert.Equal(t, 30*time.Second, cfg.UnlockWindow)
			},
		},
		{
			name: "load custom metrics configuration",
			envVars: map[string]string{
				"FINSTORE_METRICS_ENABLED":   "false",
				"FINSTORE_METRICS_NAMESPACE": "moneyapp",
				"FINSTORE_METRICS_HOST":      "0.0.0.0",
				"FINSTORE_METRICS_PORT":      "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.MetricsEnabled)
				assert.Equal(t, "moneyapp", cfg.MetricsNamespace)
				assert.Equal(t, "0.0.0.0", cfg.MetricsHost)
				assert.Equal(t, 9090, cfg.MetricsPort)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"FINSTORE_LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}
