// Package openlibrary is a thin client for the Open Library books and
// search APIs.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://openlibrary.org"

// CoversBaseURL serves cover images by cover id.
var CoversBaseURL = "https://covers.openlibrary.org"

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

// NewClient returns a client for baseURL. A nil httpClient means
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  "bookshelf/1.0",
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openlibrary: unexpected status code: %d", e.Code)
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
}

// CoverURL returns the medium cover for the doc, or "" without a cover id.
func (d SearchDoc) CoverURL() string {
	if d.CoverID == 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", CoversBaseURL, d.CoverID)
}

type Author struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Text is a field that Open Library returns either as a plain string or as
// {"type": "/type/text", "value": "..."}.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &typed); err != nil {
		return err
	}
	*t = Text(typed.Value)
	return nil
}

// BookDetails matches api/books?jscmd=data
type BookDetails struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Description   Text     `json:"description"`
	Notes         Text     `json:"notes"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
	Pagination    string   `json:"pagination"`
	Authors       []Author `json:"authors"`
	Cover         struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
}

// Pages returns number_of_pages, else the leading integer of pagination
// ("300 p." -> 300), else 0.
func (b BookDetails) Pages() int {
	if b.NumberOfPages > 0 {
		return b.NumberOfPages
	}
	s := strings.TrimSpace(b.Pagination)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// BookByISBN fetches one edition. found is false when Open Library has no
// record for the ISBN.
func (c *Client) BookByISBN(ctx context.Context, isbn string) (BookDetails, bool, error) {
	key := "ISBN:" + isbn
	q := url.Values{}
	q.Set("bibkeys", key)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	var res map[string]BookDetails
	if err := c.get(ctx, c.baseURL+"/api/books?"+q.Encode(), &res); err != nil {
		return BookDetails{}, false, err
	}
	details, ok := res[key]
	return details, ok, nil
}

// Search runs a free-text search. limit <= 0 leaves the upstream default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("fields", "key,title,author_name,isbn,first_publish_year,cover_i")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("openlibrary: decode response: %w", err)
	}
	return nil
}
