package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/internal/collection"
	"bookshelf/internal/config"
	"bookshelf/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigratesAndServes(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		DBDriver:  config.DriverSQLite,
		DBDSN:     filepath.Join(t.TempDir(), "store.db"),
		DBTimeout: time.Second,
	}

	repos, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer repos.Close()

	require.NoError(t, repos.Ping(ctx))

	now := time.Now().UTC()
	u := &user.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Password: "hash", Role: user.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Create(ctx, u))

	e := &collection.Entry{ID: "e-1", UserID: u.ID, ISBN: "9780547928241", Provider: "openlibrary.org", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Collection.Create(ctx, e))

	entries, err := repos.Collection.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported driver")
}
