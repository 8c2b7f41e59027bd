package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/groupgainz/backend/internal/auth"
	"github.com/groupgainz/backend/internal/messages"
	"github.com/groupgainz/backend/internal/metrics"
	"github.com/groupgainz/backend/internal/server"
	"github.com/groupgainz/backend/internal/settlement"
	"github.com/groupgainz/backend/internal/storage"
	"github.com/groupgainz/backend/internal/storage/postgres"
	"github.com/groupgainz/backend/internal/storage/sqlite"
	"github.com/groupgainz/backend/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("ignoring non-numeric env value", "key", key, "value", value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("ignoring non-boolean env value", "key", key, "value", value)
	}
	return fallback
}

// openStore picks Postgres when DATABASE_URL is set (the hosted backend,
// reached with a privileged service DSN), otherwise a local SQLite file.
func openStore(ctx context.Context) (storage.Store, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err := postgres.Open(dsn)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		slog.Info("storage initialized", "backend", "postgres")
		return store, nil
	}

	dbPath := getEnv("DB_PATH", "./data/groupgainz.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, err
	}
	slog.Info("storage initialized", "backend", "sqlite", "database", dbPath)
	return store, nil
}

func main() {
	logging.Setup()
	metrics.Init()

	store, err := openStore(context.Background())
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := settlement.Config{
		PointThreshold:           getEnvInt("POINT_THRESHOLD", settlement.DefaultPointThreshold),
		DeduplicateNotifications: getEnvBool("DEDUPE_NOTIFICATIONS", false),
	}
	job := settlement.NewJob(store, messages.NewProvider(), cfg)

	var tokens *auth.TokenManager
	if secret := os.Getenv("SERVICE_TOKEN_SECRET"); secret != "" {
		tokens = auth.NewTokenManager(secret, 24*time.Hour)
	} else {
		slog.Warn("SERVICE_TOKEN_SECRET not set; weekly job trigger is unauthenticated")
	}

	srv := &http.Server{
		Addr:              getEnv("ADDR", ":8080"),
		Handler:           server.New(store, job, tokens).Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute, // a full settlement run answers on this request
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("settlement server starting", "address", srv.Addr, "threshold", cfg.PointThreshold)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("shutdown incomplete", "error", err)
	}
}
