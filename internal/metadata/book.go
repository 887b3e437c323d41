package metadata

import (
	"net/url"
	"strings"
)

// Defaults used when a provider has no value for a field.
const (
	DefaultTitle       = "Unknown Title"
	DefaultDescription = "No description available."
	DefaultAuthor      = "Unknown Author"
	DefaultPublishDate = "Unknown Date"
)

type Author struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Cover holds one URL per size, "" when the provider has none.
type Cover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// CanonicalBook is the provider independent view of a book. Every field is
// always populated.
type CanonicalBook struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Authors       []Author `json:"authors"`
	Cover         Cover    `json:"cover"`
	NumberOfPages int      `json:"number_of_pages"`
	PublishDate   string   `json:"publish_date"`
}

// Default returns the book used when nothing could be fetched for id.
func Default(id string) CanonicalBook {
	return CanonicalBook{
		ISBN:        id,
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Authors:     []Author{},
		PublishDate: DefaultPublishDate,
	}
}

// fill replaces empty fields with their defaults.
func (b CanonicalBook) fill(id string) CanonicalBook {
	if b.ISBN == "" {
		b.ISBN = id
	}
	if strings.TrimSpace(b.Title) == "" {
		b.Title = DefaultTitle
	}
	if strings.TrimSpace(b.Description) == "" {
		b.Description = DefaultDescription
	}
	if b.Authors == nil {
		b.Authors = []Author{}
	}
	if b.PublishDate == "" {
		b.PublishDate = DefaultPublishDate
	}
	if b.NumberOfPages < 0 {
		b.NumberOfPages = 0
	}
	return b
}

// escapeComponent escapes s for use in a query string, encoding spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
