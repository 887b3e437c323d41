package metadata

import (
	"context"
	"time"

	"bookshelf/internal/platform/googlebooks"
)

const googleSearchURL = "https://www.google.com/search?q="

type GoogleBooksAdapter struct {
	client *googlebooks.Client
}

func NewGoogleBooksAdapter(client *googlebooks.Client) *GoogleBooksAdapter {
	return &GoogleBooksAdapter{client: client}
}

func (a *GoogleBooksAdapter) Provider() Provider { return GoogleBooks }

func (a *GoogleBooksAdapter) Fetch(ctx context.Context, identifier string) CanonicalBook {
	start := time.Now()
	resp, err := a.client.VolumesByISBN(ctx, identifier)
	if err != nil {
		return fallback(ctx, GoogleBooks, identifier, err, start)
	}
	if resp.TotalItems == 0 || len(resp.Items) == 0 {
		return miss(ctx, GoogleBooks, identifier, start)
	}
	hit(GoogleBooks, start)

	info := resp.Items[0].VolumeInfo
	authors := make([]Author, 0, len(info.Authors))
	for _, name := range info.Authors {
		authors = append(authors, Author{Name: name, URL: googleSearchURL + escapeComponent(name)})
	}

	return CanonicalBook{
		ISBN:          info.ISBN(),
		Title:         info.Title,
		Description:   info.Description,
		Authors:       authors,
		NumberOfPages: info.PageCount,
		PublishDate:   info.PublishedDate,
		Cover: Cover{
			Small:  info.ImageLinks.SmallThumbnail,
			Medium: info.ImageLinks.Thumbnail,
			Large:  info.ImageLinks.Large,
		},
	}.fill(identifier)
}

// Search keeps only volumes that carry an industry identifier.
func (a *GoogleBooksAdapter) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	resp, err := a.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(resp.Items))
	for _, v := range resp.Items {
		isbn := v.VolumeInfo.ISBN()
		if isbn == "" {
			continue
		}
		author := DefaultAuthor
		if len(v.VolumeInfo.Authors) > 0 {
			author = v.VolumeInfo.Authors[0]
		}
		out = append(out, SearchResult{
			Title:       v.VolumeInfo.Title,
			Author:      author,
			ISBN:        isbn,
			Cover:       v.VolumeInfo.ImageLinks.Thumbnail,
			PublishDate: v.VolumeInfo.PublishedDate,
			Source:      GoogleBooks.String(),
		})
	}
	return out, nil
}
