package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bookshelf/internal/collection"
	"bookshelf/internal/metadata"
	"bookshelf/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	entries map[string]collection.Entry
	err     error
	calls   atomic.Int32
}

func newFakeAPI(entries ...collection.Entry) *fakeAPI {
	f := &fakeAPI{entries: map[string]collection.Entry{}}
	for _, e := range entries {
		f.entries[e.ISBN] = e
	}
	return f
}

func (f *fakeAPI) Profile(context.Context) (profile.Profile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return profile.Profile{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := profile.Profile{ID: "u-1", Username: "test", Email: "test@example.com", Collection: []collection.Entry{}}
	for _, isbn := range []string{"1", "2", "3"} {
		if e, ok := f.entries[isbn]; ok {
			p.Collection = append(p.Collection, e)
		}
	}
	return p, nil
}

func (f *fakeAPI) AddEntry(_ context.Context, provider, isbn string) (collection.Entry, error) {
	f.calls.Add(1)
	if f.err != nil {
		return collection.Entry{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[isbn]; ok {
		return collection.Entry{}, &APIError{Status: 409, Code: "CONFLICT"}
	}
	e := collection.Entry{ISBN: isbn, Provider: provider}
	f.entries[isbn] = e
	return e, nil
}

func (f *fakeAPI) UpdateEntry(_ context.Context, isbn string, patch collection.Patch) (collection.Entry, error) {
	f.calls.Add(1)
	if f.err != nil {
		return collection.Entry{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[isbn]
	if !ok {
		return collection.Entry{}, &APIError{Status: 404, Code: "NOT_FOUND"}
	}
	if patch.Read != nil {
		e.Read = *patch.Read
	}
	if patch.Rating != nil {
		r := *patch.Rating
		e.Rating = &r
	}
	e.UpdatedAt = time.Now().UTC()
	f.entries[isbn] = e
	return e, nil
}

func (f *fakeAPI) DeleteEntry(_ context.Context, isbn string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[isbn]; !ok {
		return &APIError{Status: 404, Code: "NOT_FOUND"}
	}
	delete(f.entries, isbn)
	return nil
}

type fakeResolver struct {
	batches [][]metadata.Lookup
	mu      sync.Mutex
}

func (r *fakeResolver) ResolveAll(_ context.Context, lookups []metadata.Lookup) []metadata.CanonicalBook {
	r.mu.Lock()
	r.batches = append(r.batches, lookups)
	r.mu.Unlock()
	out := make([]metadata.CanonicalBook, len(lookups))
	for i, l := range lookups {
		out[i] = metadata.Default(l.Identifier)
		out[i].Title = "title " + l.Identifier
	}
	return out
}

type failingCache struct{ MemoryCache }

func (*failingCache) Load(context.Context) (Profile, error) { return Profile{}, errors.New("corrupt") }

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	s := NewStore(newFakeAPI(), &fakeResolver{}, &failingCache{})
	p := s.Load(ctx)
	assert.NotNil(t, p.Collection)
	assert.Empty(t, p.Collection)

	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, sampleProfile()))
	s = NewStore(newFakeAPI(), &fakeResolver{}, cache)
	p = s.Load(ctx)
	assert.Equal(t, "test", p.Username)
	assert.Len(t, p.Collection, 1)
}

func TestStore_Refresh(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(
		collection.Entry{ISBN: "1", Provider: "openlibrary.org"},
		collection.Entry{ISBN: "2", Provider: "googlebooks.com", Read: true},
	)
	resolver := &fakeResolver{}
	cache := NewMemoryCache()
	s := NewStore(api, resolver, cache)

	p, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, p.Collection, 2)
	assert.Equal(t, "title 1", p.Collection[0].BookData.Title)
	assert.Equal(t, "title 2", p.Collection[1].BookData.Title)
	require.Len(t, resolver.batches, 1)
	assert.Len(t, resolver.batches[0], 2)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, cached)

	api.err = &APIError{Status: 401}
	_, err = s.Refresh(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Len(t, s.Profile().Collection, 2)
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	resolver := &fakeResolver{}
	cache := NewMemoryCache()
	s := NewStore(api, resolver, cache)

	item, err := s.Add(ctx, "openlibrary.org", "1")
	require.NoError(t, err)
	assert.Equal(t, "title 1", item.BookData.Title)
	assert.Equal(t, [][]metadata.Lookup{{{Provider: "openlibrary.org", Identifier: "1"}}}, resolver.batches)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Collection, 1)

	_, err = s.Add(ctx, "openlibrary.org", "1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, s.Profile().Collection, 1)
	assert.Len(t, resolver.batches, 1)
}

func TestStore_MutationsPatchInPlace(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(collection.Entry{ISBN: "1", Provider: "openlibrary.org"}, collection.Entry{ISBN: "2", Provider: "openlibrary.org"})
	cache := NewMemoryCache()
	s := NewStore(api, &fakeResolver{}, cache)
	_, err := s.Refresh(ctx)
	require.NoError(t, err)

	item, err := s.SetRating(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, *item.Rating)
	assert.Equal(t, "title 1", item.BookData.Title)

	item, err = s.ToggleRead(ctx, "1")
	require.NoError(t, err)
	assert.True(t, item.Read)
	item, err = s.ToggleRead(ctx, "1")
	require.NoError(t, err)
	assert.False(t, item.Read)

	p := s.Profile()
	assert.Equal(t, "1", p.Collection[0].ISBN)
	assert.Equal(t, 4, *p.Collection[0].Rating)
	assert.Equal(t, "title 1", p.Collection[0].BookData.Title)

	require.NoError(t, s.Remove(ctx, "1"))
	p = s.Profile()
	require.Len(t, p.Collection, 1)
	assert.Equal(t, "2", p.Collection[0].ISBN)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, cached)
}

func TestStore_FailuresLeaveStateUntouched(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(collection.Entry{ISBN: "1", Provider: "openlibrary.org"})
	s := NewStore(api, &fakeResolver{}, NewMemoryCache())
	_, err := s.Refresh(ctx)
	require.NoError(t, err)
	before := s.Profile()

	api.err = errors.New("network down")
	_, err = s.SetRating(ctx, "1", 5)
	assert.Error(t, err)
	assert.Error(t, s.Remove(ctx, "1"))
	_, err = s.Add(ctx, "openlibrary.org", "2")
	assert.Error(t, err)

	assert.Equal(t, before, s.Profile())
}

func TestStore_ToggleUnknownMakesNoCall(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api, &fakeResolver{}, NewMemoryCache())

	_, err := s.ToggleRead(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, api.calls.Load())
}

func TestStore_ProfileIsACopy(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(collection.Entry{ISBN: "1", Provider: "openlibrary.org"})
	s := NewStore(api, &fakeResolver{}, NewMemoryCache())
	_, err := s.SetRating(ctx, "1", 2)
	require.NoError(t, err)
	_, err = s.Refresh(ctx)
	require.NoError(t, err)

	p := s.Profile()
	*p.Collection[0].Rating = 5
	p.Collection[0].BookData.Title = "changed"

	again := s.Profile()
	assert.Equal(t, 2, *again.Collection[0].Rating)
	assert.Equal(t, "title 1", again.Collection[0].BookData.Title)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, sampleProfile()))
	s := NewStore(newFakeAPI(), &fakeResolver{}, cache)
	s.Load(ctx)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Profile().Collection)
	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, ErrCacheEmpty)
}
