package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groupcast/groupcast/internal/config"
	"github.com/groupcast/groupcast/internal/middleware"
	"github.com/groupcast/groupcast/internal/server"
	"github.com/groupcast/groupcast/internal/storage/sqlite"
	"github.com/groupcast/groupcast/pkg/logging"
)

const (
	heartbeatInterval = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
	hubCloseTimeout   = 5 * time.Second
)

func main() {
	logging.Setup()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DatabasePath)

	hub := server.NewHub()
	srv := server.New(store, hub, heartbeatInterval)

	handler := middleware.Logging(middleware.Metrics(srv.Routes()))

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	// Stop accepting requests first; hijacked stream connections are not
	// covered by Shutdown, the hub closes those afterwards.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := hub.Shutdown(hubCloseTimeout); err != nil {
		slog.Warn("Hub shutdown timed out, some streams may still be open")
	}

	slog.Info("Server stopped")
}
