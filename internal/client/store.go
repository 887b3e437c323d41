package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bookshelf/internal/collection"
	"bookshelf/internal/logging"
	"bookshelf/internal/metadata"
	"bookshelf/internal/profile"
)

// API is the part of the server API the Store depends on. *APIClient
// implements it.
type API interface {
	Profile(ctx context.Context) (profile.Profile, error)
	AddEntry(ctx context.Context, provider, isbn string) (collection.Entry, error)
	UpdateEntry(ctx context.Context, isbn string, patch collection.Patch) (collection.Entry, error)
	DeleteEntry(ctx context.Context, isbn string) error
}

// Resolver enriches entries with metadata. *metadata.Resolver implements it.
type Resolver interface {
	ResolveAll(ctx context.Context, lookups []metadata.Lookup) []metadata.CanonicalBook
}

// Store holds the user's profile in memory and mirrors it into a Cache.
// Every mutation reaches the server first; local state changes only after
// the server confirmed it. Concurrent mutations are not serialized: the
// response that arrives last wins.
type Store struct {
	api      API
	resolver Resolver
	cache    Cache

	mu      sync.Mutex
	profile Profile
}

func NewStore(api API, resolver Resolver, cache Cache) *Store {
	return &Store{api: api, resolver: resolver, cache: cache, profile: emptyProfile()}
}

// Load seeds the in-memory state from the cache. An empty or unreadable
// cache yields an empty profile.
func (s *Store) Load(ctx context.Context) Profile {
	p, err := s.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCacheEmpty) {
			logging.Ctx(ctx).Warn().Err(err).Msg("profile cache unreadable, starting empty")
		}
		p = emptyProfile()
	}
	if p.Collection == nil {
		p.Collection = []Item{}
	}

	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return p.clone()
}

// Profile returns a copy of the current state.
func (s *Store) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.clone()
}

// Refresh replaces the state with the server's profile, resolving metadata
// for every entry.
func (s *Store) Refresh(ctx context.Context) (Profile, error) {
	remote, err := s.api.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}

	lookups := make([]metadata.Lookup, len(remote.Collection))
	for i, e := range remote.Collection {
		lookups[i] = metadata.Lookup{Provider: e.Provider, Identifier: e.ISBN}
	}
	books := s.resolver.ResolveAll(ctx, lookups)

	p := Profile{
		ID:         remote.ID,
		Username:   remote.Username,
		Email:      remote.Email,
		Collection: make([]Item, len(remote.Collection)),
	}
	for i, e := range remote.Collection {
		p.Collection[i] = Item{Entry: e, BookData: books[i]}
	}

	s.mu.Lock()
	s.profile = p
	snapshot := s.profile.clone()
	s.mu.Unlock()

	s.save(ctx, snapshot)
	return snapshot.clone(), nil
}

// Add creates the entry on the server, then resolves its metadata and
// appends it.
func (s *Store) Add(ctx context.Context, provider, isbn string) (Item, error) {
	e, err := s.api.AddEntry(ctx, provider, isbn)
	if err != nil {
		return Item{}, err
	}
	books := s.resolver.ResolveAll(ctx, []metadata.Lookup{{Provider: e.Provider, Identifier: e.ISBN}})
	item := Item{Entry: e, BookData: books[0]}

	s.mu.Lock()
	s.profile.Collection = append(s.profile.Collection, item)
	snapshot := s.profile.clone()
	s.mu.Unlock()

	s.save(ctx, snapshot)
	return item.clone(), nil
}

// Remove deletes the entry on the server, then drops it locally.
func (s *Store) Remove(ctx context.Context, isbn string) error {
	if err := s.api.DeleteEntry(ctx, isbn); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.profile.Collection[:0]
	for _, it := range s.profile.Collection {
		if it.ISBN != isbn {
			kept = append(kept, it)
		}
	}
	s.profile.Collection = kept
	snapshot := s.profile.clone()
	s.mu.Unlock()

	s.save(ctx, snapshot)
	return nil
}

// SetRating sets the rating of an entry.
func (s *Store) SetRating(ctx context.Context, isbn string, rating int) (Item, error) {
	return s.update(ctx, isbn, collection.Patch{Rating: &rating})
}

// ToggleRead flips the read flag based on the local state. Entries unknown
// locally fail with ErrNotFound without a server call.
func (s *Store) ToggleRead(ctx context.Context, isbn string) (Item, error) {
	s.mu.Lock()
	current, ok := s.profile.Find(isbn)
	s.mu.Unlock()
	if !ok {
		return Item{}, fmt.Errorf("%w: %s is not in the collection", ErrNotFound, isbn)
	}

	read := !current.Read
	return s.update(ctx, isbn, collection.Patch{Read: &read})
}

// update applies the server's version of the entry in place, keeping the
// resolved metadata.
func (s *Store) update(ctx context.Context, isbn string, patch collection.Patch) (Item, error) {
	e, err := s.api.UpdateEntry(ctx, isbn, patch)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	var updated Item
	found := false
	for i := range s.profile.Collection {
		it := &s.profile.Collection[i]
		if it.ISBN != isbn {
			continue
		}
		it.Read = e.Read
		it.Rating = e.Rating
		it.UpdatedAt = e.UpdatedAt
		updated, found = it.clone(), true
		break
	}
	snapshot := s.profile.clone()
	s.mu.Unlock()

	if !found {
		updated = Item{Entry: e, BookData: metadata.Default(isbn)}
	}
	s.save(ctx, snapshot)
	return updated, nil
}

// Clear wipes memory and cache, as on logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.profile = emptyProfile()
	s.mu.Unlock()
	return s.cache.Clear(ctx)
}

// save overwrites the cached snapshot. Failures are only logged.
func (s *Store) save(ctx context.Context, p Profile) {
	if err := s.cache.Save(ctx, p); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("saving profile snapshot failed")
	}
}
