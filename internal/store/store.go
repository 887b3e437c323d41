// Package store opens the configured database backend and bundles the
// repositories built on it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/collection"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/user"

	"github.com/jackc/pgx/v5/stdlib"
)

// Repositories bundles the stores of one backend.
type Repositories struct {
	Users      user.Repository
	Collection collection.Repository
	Books      book.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backend is reachable.
func (r Repositories) Ping(ctx context.Context) error { return r.ping(ctx) }

// Close releases the backend connection.
func (r Repositories) Close() { r.close() }

// Open connects to cfg.DBDriver, applies pending migrations (or indexes for
// mongo) and returns the repositories.
func Open(ctx context.Context, cfg config.Config) (Repositories, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return Repositories{}, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		if err := database.Migrate(ctx, sqlDB, database.DialectPostgres); err != nil {
			_ = sqlDB.Close()
			pool.Close()
			return Repositories{}, fmt.Errorf("migrate: %w", err)
		}
		return Repositories{
			Users:      user.NewPostgresRepo(pool, cfg.DBTimeout),
			Collection: collection.NewPostgresRepo(pool, cfg.DBTimeout),
			Books:      book.NewPostgresRepo(pool, cfg.DBTimeout),
			ping:       pool.Ping,
			close: func() {
				_ = sqlDB.Close()
				pool.Close()
			},
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.DBDSN)
		if err != nil {
			return Repositories{}, err
		}
		if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
			_ = db.Close()
			return Repositories{}, fmt.Errorf("migrate: %w", err)
		}
		return NewSQLite(db, cfg.DBTimeout), nil

	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return Repositories{}, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return Repositories{}, fmt.Errorf("ensure indexes: %w", err)
		}
		return Repositories{
			Users:      user.NewMongoRepo(db, cfg.DBTimeout),
			Collection: collection.NewMongoRepo(db, cfg.DBTimeout),
			Books:      book.NewMongoRepo(db, cfg.DBTimeout),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
	return Repositories{}, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}

// NewSQLite builds repositories over an already migrated SQLite database.
func NewSQLite(db *sql.DB, timeout time.Duration) Repositories {
	return Repositories{
		Users:      user.NewSQLiteRepo(db, timeout),
		Collection: collection.NewSQLiteRepo(db, timeout),
		Books:      book.NewSQLiteRepo(db, timeout),
		ping:       db.PingContext,
		close:      func() { _ = db.Close() },
	}
}
