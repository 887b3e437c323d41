package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Dialect names as understood by goose.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

func migrationsDir(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "migrations/postgres", nil
	case DialectSQLite:
		return "migrations/sqlite", nil
	}
	return "", fmt.Errorf("unsupported migration dialect %q", dialect)
}

// Migrate quietly applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetLogger(goose.NopLogger())
	return RunMigrations(ctx, db, dialect, "up")
}

// RunMigrations executes a goose command (up, down, status, version, reset)
// against the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, command string) error {
	dir, err := migrationsDir(dialect)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrationFiles lists the embedded migration names for dialect.
func MigrationFiles(dialect string) ([]string, error) {
	dir, err := migrationsDir(dialect)
	if err != nil {
		return nil, err
	}
	return fs.Glob(migrationsFS, dir+"/*.sql")
}
