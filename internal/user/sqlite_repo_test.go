package user

import (
	"context"
	"testing"
	"time"

	"bookshelf/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	return NewSQLiteRepo(testutil.NewSQLiteDB(t), time.Second)
}

func TestSQLiteRepo(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := &User{ID: "u-1", Username: "test", Email: "test@example.com", Password: "hash", Role: RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByUsername(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "hash", got.Password)
	assert.True(t, got.CreatedAt.Equal(now))

	got, err = repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "test", got.Username)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &User{ID: "u-2", Username: "test", Email: "other@example.com", Password: "hash", Role: RoleUser, CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrAlreadyExists)
}
