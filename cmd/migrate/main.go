package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"bookshelf/internal/config"
	"bookshelf/internal/logging"
	"bookshelf/internal/platform/database"

	"github.com/jackc/pgx/v5/stdlib"
)

var commands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

func main() {
	command := flag.String("command", "up", "Migration command: up, down, status, version, reset")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.LoadDatabase()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *command); err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Str("dsn", config.RedactDSN(cfg.DBDSN)).Msg("migration failed")
	}
	logging.Info().Str("driver", cfg.DBDriver).Str("command", *command).Msg("migration finished")
}

func run(ctx context.Context, cfg config.Config, command string) error {
	if !commands[command] {
		return fmt.Errorf("unknown command %q", command)
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()
		return database.RunMigrations(ctx, db, database.DialectPostgres, command)

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return database.RunMigrations(ctx, db, database.DialectSQLite, command)

	case config.DriverMongo:
		// Mongo has no schema; "up" only ensures the indexes exist.
		if command != "up" {
			return fmt.Errorf("command %q is not supported for mongo", command)
		}
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		return database.EnsureMongoIndexes(ctx, db)
	}
	return fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}
