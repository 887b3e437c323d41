package metadata

import (
	"context"
	"fmt"
	"time"

	"bookshelf/internal/platform/openlibrary"
)

const openLibrarySearchURL = "https://openlibrary.org/search?q="

type OpenLibraryAdapter struct {
	client *openlibrary.Client
}

func NewOpenLibraryAdapter(client *openlibrary.Client) *OpenLibraryAdapter {
	return &OpenLibraryAdapter{client: client}
}

func (a *OpenLibraryAdapter) Provider() Provider { return OpenLibrary }

func (a *OpenLibraryAdapter) Fetch(ctx context.Context, identifier string) CanonicalBook {
	start := time.Now()
	details, found, err := a.client.BookByISBN(ctx, identifier)
	if err != nil {
		return fallback(ctx, OpenLibrary, identifier, err, start)
	}
	if !found {
		return miss(ctx, OpenLibrary, identifier, start)
	}
	hit(OpenLibrary, start)

	authors := make([]Author, 0, len(details.Authors))
	for _, au := range details.Authors {
		name := au.Name
		if name == "" {
			name = DefaultAuthor
		}
		link := au.URL
		if link == "" {
			link = openLibrarySearchURL + escapeComponent(au.Name)
		}
		authors = append(authors, Author{Name: name, URL: link})
	}

	return CanonicalBook{
		ISBN:          identifier,
		Title:         details.Title,
		Description:   string(details.Description),
		Authors:       authors,
		NumberOfPages: details.Pages(),
		PublishDate:   details.PublishDate,
		Cover: Cover{
			Small:  details.Cover.Small,
			Medium: details.Cover.Medium,
			Large:  details.Cover.Large,
		},
	}.fill(identifier)
}

// Search keeps only docs that carry an ISBN.
func (a *OpenLibraryAdapter) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	resp, err := a.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		if len(d.ISBN) == 0 {
			continue
		}
		author := DefaultAuthor
		if len(d.AuthorNames) > 0 {
			author = d.AuthorNames[0]
		}
		var year string
		if d.FirstPublishYear > 0 {
			year = fmt.Sprint(d.FirstPublishYear)
		}
		out = append(out, SearchResult{
			Title:       d.Title,
			Author:      author,
			ISBN:        d.ISBN[0],
			Cover:       d.CoverURL(),
			PublishDate: year,
			Source:      OpenLibrary.String(),
		})
	}
	return out, nil
}
