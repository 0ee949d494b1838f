// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/finstore/internal/config"
	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	"github.com/allisson/finstore/internal/http"
	"github.com/allisson/finstore/internal/metrics"
	"github.com/allisson/finstore/internal/store"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	logger          *slog.Logger
	metricsProvider *metrics.Provider
	storeMetrics    metrics.StoreMetrics
	dataStore       *store.Store
	metricsServer   *http.MetricsServer

	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	storeMetricsInit    sync.Once
	storeInit           sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// StoreMetrics returns the store metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) StoreMetrics() (metrics.StoreMetrics, error) {
	c.storeMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["storeMetrics"] = err
			return
		}
		if provider == nil {
			c.storeMetrics = metrics.NewNoOpStoreMetrics()
			return
		}
		storeMetrics, err := metrics.NewStoreMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["storeMetrics"] = err
			return
		}
		c.storeMetrics = storeMetrics
	})
	if storedErr, exists := c.initErrors["storeMetrics"]; exists {
		return nil, storedErr
	}
	return c.storeMetrics, nil
}

// Store returns the encrypted data store. The store is created closed; the
// caller decides when to Open it.
func (c *Container) Store() (*store.Store, error) {
	c.storeInit.Do(func() {
		storeMetrics, err := c.StoreMetrics()
		if err != nil {
			c.initErrors["store"] = err
			return
		}
		c.dataStore = store.New(store.Config{
			DatabasePath:      c.config.DatabasePath,
			KeystorePath:      c.config.KeystorePath,
			BusyTimeout:       c.config.DBBusyTimeout,
			KeeperURI:         c.config.KeeperURI,
			Algorithm:         cryptoDomain.AESGCM,
			KDFIterations:     c.config.KDFIterations,
			UnlockMaxAttempts: c.config.UnlockMaxAttempts,
			UnlockWindow:      c.config.UnlockWindow,
		}, c.Logger(), storeMetrics)
	})
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.dataStore, nil
}

// MetricsServer returns the metrics HTTP server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.MetricsHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.dataStore != nil {
		if err := c.dataStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
