package book

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrLimitReached is returned when a user already created the maximum number of books.
	ErrLimitReached = errors.New("max number of books reached")
	// ErrQueryTooShort is returned for search queries under MinQueryLength characters.
	ErrQueryTooShort = errors.New("search query too short")
)

// ProviderKey is the provider name collection entries use for local books.
// Such entries store the book id in their isbn field.
const ProviderKey = "local"

const (
	MinQueryLength = 2
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Sort keys accepted by Search.
const (
	SortTitle         = "title"
	SortAuthor        = "author"
	SortPublishedDate = "published_date"
	SortRating        = "rating"
)

// Book is an entry of the local catalog, created by users for titles the
// external providers do not know.
type Book struct {
	ID            string    `json:"id" bson:"_id"`
	ISBN          string    `json:"isbn" bson:"isbn"`
	Title         string    `json:"title" bson:"title"`
	Author        string    `json:"author" bson:"author"`
	Description   string    `json:"description" bson:"description"`
	Cover         string    `json:"cover" bson:"cover"`
	PublishedDate string    `json:"published_date" bson:"publishedDate"`
	PageCount     int       `json:"page_count" bson:"pageCount"`
	CreatedBy     string    `json:"created_by" bson:"createdBy"`
	CreatedAt     time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"`
}

// Query defines the search text, ordering and pagination for Search.
type Query struct {
	Q      string
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// Desc reports whether results are ordered descending.
func (q Query) Desc() bool {
	return q.Order == "desc"
}

// Normalize trims the query, falls back to title/asc for unknown sort and
// order values and clamps limit and offset.
func (q Query) Normalize() Query {
	q.Q = strings.TrimSpace(q.Q)

	switch q.Sort {
	case SortTitle, SortAuthor, SortPublishedDate, SortRating:
	default:
		q.Sort = SortTitle
	}

	q.Order = strings.ToLower(q.Order)
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = "asc"
	}

	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Page is one slice of search results.
type Page struct {
	Books       []Book `json:"books"`
	Total       int    `json:"total"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	HasMore     bool   `json:"hasMore"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

func newPage(books []Book, total int, q Query) Page {
	if books == nil {
		books = []Book{}
	}
	return Page{
		Books:       books,
		Total:       total,
		Limit:       q.Limit,
		Offset:      q.Offset,
		HasMore:     q.Offset+len(books) < total,
		TotalPages:  (total + q.Limit - 1) / q.Limit,
		CurrentPage: q.Offset/q.Limit + 1,
	}
}

// CreateCommand carries the user supplied fields of a new book.
type CreateCommand struct {
	ISBN          string `json:"isbn" validate:"omitempty,isbn"`
	Title         string `json:"title" validate:"required,max=300"`
	Author        string `json:"author" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=5000"`
	Cover         string `json:"cover" validate:"omitempty,url"`
	PublishedDate string `json:"published_date" validate:"max=50"`
	PageCount     int    `json:"page_count" validate:"gte=0"`
}

// sortColumns maps sort keys to SQL expressions; "r.avg_rating" comes from
// the ratings join.
var sortColumns = map[string]string{
	SortTitle:         "b.title",
	SortAuthor:        "b.author",
	SortPublishedDate: "b.published_date",
	SortRating:        "COALESCE(r.avg_rating, 0)",
}
