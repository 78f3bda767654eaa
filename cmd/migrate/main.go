package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"libraryapi/internal/logger"
	"libraryapi/internal/platform/database"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	if err := run(*command, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// create only writes a file, it never needs a connection.
	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, cfg.MigrationsDir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		log.Info("migration created", zap.String("name", name), zap.String("dir", cfg.MigrationsDir))
		return nil
	}

	ctx := context.Background()
	pool, err := database.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	switch command {
	case "up":
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info("migrations applied successfully")
	case "down":
		if err := database.MigrateDown(ctx, pool); err != nil {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		log.Info("migrations rolled back successfully")
	case "status":
		if err := database.MigrationStatus(ctx, pool); err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}
