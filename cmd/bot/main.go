package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/m3rciful/bistrobot/internal/bot"
	"github.com/m3rciful/bistrobot/internal/config"
	"github.com/m3rciful/bistrobot/internal/database"
	"github.com/m3rciful/bistrobot/internal/logger"
	"github.com/m3rciful/bistrobot/internal/storage"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("bistrobot: %v", err)
	}
}

func run() error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)

	store, cleanup, err := buildStorage(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	b, err := bot.New(bot.Options{
		Config:  cfg,
		Storage: store,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()
	logger.L.With("component", "app").Info("app ready",
		slog.String("event", "ready"),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	err = b.Run(ctx)

	logger.L.With("component", "app").Info("shutting down...",
		slog.String("event", "shutdown"),
	)
	return err
}

// buildStorage connects to Postgres and applies migrations; with no database
// host configured it degrades to the in-memory store for local runs.
func buildStorage(cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.Database.Host == "" {
		logger.DB.Warn("no database configured, using in-memory storage",
			slog.String("event", "storage.memory"),
		)
		return storage.NewMemory(), func() {}, nil
	}

	if err := database.RunMigrations(cfg.Database); err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.DB.Warn("close failed",
				slog.String("event", "db.close"),
				slog.String("err", err.Error()),
			)
		}
	}
	return storage.NewPostgres(db), cleanup, nil
}
