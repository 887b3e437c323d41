package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/logging"
	"bookshelf/internal/metrics"
)

// Provider is the canonical key of a metadata source, as stored on
// collection entries.
type Provider string

const (
	OpenLibrary Provider = "openlibrary.org"
	GoogleBooks Provider = "googlebooks.com"
	Local       Provider = book.ProviderKey
)

var ErrUnknownProvider = errors.New("unknown provider")

var providerAliases = map[string]Provider{
	"openlibrary.org": OpenLibrary,
	"openlibrary":     OpenLibrary,
	"googlebooks.com": GoogleBooks,
	"googlebooks":     GoogleBooks,
	"google":          GoogleBooks,
	"local":           Local,
	"bookble":         Local,
}

// ParseProvider maps a provider key or one of its aliases to its canonical
// form.
func ParseProvider(s string) (Provider, error) {
	p, ok := providerAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return p, nil
}

func (p Provider) String() string {
	return string(p)
}

// Adapter fetches one book from a single provider. Fetch never fails: any
// problem yields Default(identifier).
type Adapter interface {
	Provider() Provider
	Fetch(ctx context.Context, identifier string) CanonicalBook
}

// SearchResult is one hit of a provider search.
type SearchResult struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Cover       string `json:"cover"`
	PublishDate string `json:"publishDate"`
	Source      string `json:"source"`
}

// Searcher is implemented by adapters that support free text search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

func fallback(ctx context.Context, p Provider, id string, err error, start time.Time) CanonicalBook {
	logging.Ctx(ctx).Warn().Err(err).Str("provider", p.String()).Str("identifier", id).Msg("metadata lookup failed, using defaults")
	metrics.RecordMetadataLookup(p.String(), metrics.OutcomeError, time.Since(start))
	return Default(id)
}

func miss(ctx context.Context, p Provider, id string, start time.Time) CanonicalBook {
	logging.Ctx(ctx).Debug().Str("provider", p.String()).Str("identifier", id).Msg("metadata not found")
	metrics.RecordMetadataLookup(p.String(), metrics.OutcomeMiss, time.Since(start))
	return Default(id)
}

func hit(p Provider, start time.Time) {
	metrics.RecordMetadataLookup(p.String(), metrics.OutcomeHit, time.Since(start))
}
