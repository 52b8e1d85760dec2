// Command newsim runs the business simulation server: it opens the store,
// seeds a fresh world when the database is empty, and serves the HTTP API.
// POST /api/v1/tick advances the world one week.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Arashi-Shisy/0124newsim/internal/api"
	"github.com/Arashi-Shisy/0124newsim/internal/config"
	"github.com/Arashi-Shisy/0124newsim/internal/engine"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/persistence"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
)

func main() {
	cfgPath := os.Getenv("NEWSIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	w, err := db.LoadWorld()
	switch {
	case errors.Is(err, persistence.ErrNoRun):
		runID := uuid.NewString()
		slog.Info("no saved run found, seeding a new world", "run", runID, "seed", cfg.Seed)
		w = seed.NewWorld(runID, entropy.NewSource(cfg.Seed))
		if err := db.SaveWorld(w); err != nil {
			slog.Error("initial save failed", "error", err)
			os.Exit(1)
		}
	case err != nil:
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	default:
		slog.Info("run restored", "run", w.RunID, "week", w.Week,
			"companies", len(w.ActiveCompanies()), "people", len(w.People))
	}

	sim := engine.New(cfg.Seed)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.New(db, sim, logger).Handler(),
	}

	go func() {
		slog.Info("HTTP API starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
