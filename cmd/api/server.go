// cmd/api/server.go
// This file starts the HTTP server and shuts it down gracefully when the
// process receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests may take once shutdown starts.
const shutdownTimeout = 20 * time.Second

// serve listens on the configured port and blocks until a shutdown signal
// arrives or the server fails.
func (app *applicationDependencies) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return app.run(ctx, ln)
}

// run serves requests on ln until ctx is done, then stops accepting
// connections and waits up to shutdownTimeout for active requests.
// The limiter sweeper started by routes stops with ctx as well.
func (app *applicationDependencies) run(ctx context.Context, ln net.Listener) error {
	apiServer := &http.Server{
		Handler:      app.routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- apiServer.Serve(ln)
	}()

	app.logger.Info("starting server", "address", ln.Addr().String(), "environment", app.config.Environment)

	select {
	case err := <-serveErr:
		// Serve only returns before Shutdown when it failed.
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server", "address", ln.Addr().String(), "cause", context.Cause(ctx).Error())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	app.logger.Info("server stopped", "address", ln.Addr().String())
	return nil
}
