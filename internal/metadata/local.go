package metadata

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookshelf/internal/book"
)

// LocalCatalog reads books of the local catalog. *book.Service satisfies it
// on the server, the API client does on the client side.
type LocalCatalog interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}

// LocalSearcher is the optional search side of a LocalCatalog.
type LocalSearcher interface {
	Search(ctx context.Context, q book.Query) (book.Page, error)
}

// LocalAdapter serves books created by users. Collection entries of this
// provider carry the book id as their identifier.
type LocalAdapter struct {
	catalog LocalCatalog
	baseURL string
}

// NewLocalAdapter returns an adapter over catalog. baseURL prefixes the
// author search links.
func NewLocalAdapter(catalog LocalCatalog, baseURL string) *LocalAdapter {
	return &LocalAdapter{catalog: catalog, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *LocalAdapter) Provider() Provider { return Local }

func (a *LocalAdapter) Fetch(ctx context.Context, identifier string) CanonicalBook {
	start := time.Now()
	b, err := a.catalog.GetByID(ctx, identifier)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return miss(ctx, Local, identifier, start)
		}
		return fallback(ctx, Local, identifier, err, start)
	}
	hit(Local, start)

	authors := []Author{}
	if b.Author != "" {
		authors = append(authors, Author{Name: b.Author, URL: a.baseURL + "/search?query=" + escapeComponent(b.Author)})
	}

	return CanonicalBook{
		ISBN:          b.ISBN,
		Title:         b.Title,
		Description:   b.Description,
		Authors:       authors,
		NumberOfPages: b.PageCount,
		PublishDate:   b.PublishedDate,
		Cover:         Cover{Small: b.Cover, Medium: b.Cover, Large: b.Cover},
	}.fill(identifier)
}

// Search reports the book id as ISBN, since that is what collection entries
// of this provider store.
func (a *LocalAdapter) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	searcher, ok := a.catalog.(LocalSearcher)
	if !ok {
		return nil, errors.New("local catalog does not support search")
	}
	page, err := searcher.Search(ctx, book.Query{Q: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(page.Books))
	for _, b := range page.Books {
		out = append(out, SearchResult{
			Title:       b.Title,
			Author:      b.Author,
			ISBN:        b.ID,
			Cover:       b.Cover,
			PublishDate: b.PublishedDate,
			Source:      Local.String(),
		})
	}
	return out, nil
}
