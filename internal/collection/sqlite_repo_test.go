package collection

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
	db := testutil.NewSQLiteDB(t)
	_, err := db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u-1', 'test', 'test@example.com', 'x'), ('u-2', 'other', 'other@example.com', 'x')`)
	require.NoError(t, err)
	return NewSQLiteRepo(db, time.Second)
}

func TestSQLiteRepo(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	e := &Entry{ID: "e-1", UserID: "u-1", ISBN: "123", Provider: "openlibrary.org", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.Get(ctx, "u-1", "123")
	require.NoError(t, err)
	assert.False(t, got.Read)
	assert.Nil(t, got.Rating)

	dup := &Entry{ID: "e-2", UserID: "u-1", ISBN: "123", Provider: "googlebooks.com", CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	other := &Entry{ID: "e-3", UserID: "u-2", ISBN: "123", Provider: "openlibrary.org", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, other))

	rating := 4
	got.Read, got.Rating = true, &rating
	require.NoError(t, repo.Update(ctx, &got))

	got, err = repo.Get(ctx, "u-1", "123")
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)

	list, err := repo.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "u-1", "123"))
	assert.ErrorIs(t, repo.Delete(ctx, "u-1", "123"), ErrNotFound)
	_, err = repo.Get(ctx, "u-1", "123")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Update(ctx, &Entry{UserID: "u-1", ISBN: "nope"}), ErrNotFound)

	_, err = repo.Get(ctx, "u-2", "123")
	assert.NoError(t, err)
}
