// Package main is the entry point for the library catalog API server.
// It wires together configuration, the database store, and the HTTP router.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aoideee/library-catalog/internal/data"
)

// appVersion is the current version of the API, shown in logs and the health check.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig // Server configuration loaded at startup
	logger *slog.Logger // Structured logger that writes to stdout
	store  *data.Store  // Connection pool, used directly only for health checks
	models data.Models  // Database model layer for all tables
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		slog.Error(err.Error())
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel)

	store, err := data.Open(context.Background(), data.StoreConfig{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxIdleTime:  cfg.DB.MaxIdleTime,
	}, logger)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer store.Close()

	logger.Info("database connection pool established", "driver", cfg.DB.Driver)

	// The schema must exist before the first request is served.
	if err := store.Initialize(context.Background()); err != nil {
		logger.Error(err.Error())
		store.Close()
		os.Exit(1)
	}

	app := &applicationDependencies{
		config: cfg,
		logger: logger,
		store:  store,
		models: data.NewModels(store),
	}

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		store.Close()
		os.Exit(1)
	}
}

// newLogger returns a text logger on stdout at the given level, defaulting to info.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
