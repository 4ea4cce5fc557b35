// Package main implements the flashbox server, which schedules spaced
// repetition reviews for learnable items owned by other subsystems.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/srgulbay/flashbox/internal/config"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/platform/sqlstore"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status) and exit")
	migrateOnStart := flag.Bool("migrate-on-start", false,
		"apply pending migrations before serving")
	flag.Parse()

	if err := run(*migrateCmd, *migrateOnStart); err != nil {
		slog.Error("flashbox exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(migrateCmd string, migrateOnStart bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("verify_references", cfg.Scheduler.VerifyReferences),
		slog.Bool("hooks_enabled", cfg.Auth.HookSecret != ""))

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return sqlstore.Migrate(ctx, db, migrateCmd, log)
	}
	if migrateOnStart {
		if err := sqlstore.Migrate(ctx, db, sqlstore.MigrateUp, log); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
