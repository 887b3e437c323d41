package metadata

import (
	"context"
	"fmt"
	"sync"

	"bookshelf/internal/metrics"
)

// unknownProviderLabel keeps caller-supplied provider names out of metric labels.
const unknownProviderLabel = "unknown"

// Lookup names one book to resolve. Provider may be any key accepted by
// ParseProvider.
type Lookup struct {
	Provider   string
	Identifier string
}

// Resolver dispatches lookups to the adapter registered for their provider.
type Resolver struct {
	adapters map[Provider]Adapter
}

func NewResolver(adapters ...Adapter) *Resolver {
	r := &Resolver{adapters: make(map[Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

// Resolve fetches one book. Unknown providers yield Default(identifier).
func (r *Resolver) Resolve(ctx context.Context, provider, identifier string) CanonicalBook {
	p, err := ParseProvider(provider)
	if err != nil {
		metrics.RecordMetadataLookup(unknownProviderLabel, metrics.OutcomeFallback, 0)
		return Default(identifier)
	}
	a, ok := r.adapters[p]
	if !ok {
		metrics.RecordMetadataLookup(unknownProviderLabel, metrics.OutcomeFallback, 0)
		return Default(identifier)
	}
	return a.Fetch(ctx, identifier)
}

// ResolveAll resolves every lookup concurrently and returns the books in
// input order once all of them are done.
func (r *Resolver) ResolveAll(ctx context.Context, lookups []Lookup) []CanonicalBook {
	out := make([]CanonicalBook, len(lookups))
	if len(lookups) == 0 {
		return out
	}

	var wg sync.WaitGroup
	for i, l := range lookups {
		wg.Go(func() {
			out[i] = r.Resolve(ctx, l.Provider, l.Identifier)
		})
	}
	wg.Wait()
	return out
}

// Search runs a free text search against one provider.
func (r *Resolver) Search(ctx context.Context, provider, query string, limit int) ([]SearchResult, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	s, ok := r.adapters[p].(Searcher)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support search", p)
	}
	return s.Search(ctx, query, limit)
}
