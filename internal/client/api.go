// Package client talks to the bookshelf API and keeps a locally cached,
// metadata enriched copy of the user's collection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/collection"
	"bookshelf/internal/profile"
)

// APIClient is safe for concurrent use.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPIClient returns a client for baseURL. A nil httpClient means
// http.DefaultClient.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *APIClient) BaseURL() string { return c.baseURL }

func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   *struct {
		Code    string        `json:"code"`
		Message string        `json:"message"`
		Details []ErrorDetail `json:"details"`
	} `json:"error"`
}

// do sends body as JSON and decodes the envelope data into out. out may be
// nil.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}

// Register creates an account and stores the returned token on the client.
func (c *APIClient) Register(ctx context.Context, username, email, password string) (auth.Session, error) {
	var s auth.Session
	body := map[string]string{"username": username, "email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/register", body, &s); err != nil {
		return auth.Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Login authenticates with an email or username and stores the returned token.
func (c *APIClient) Login(ctx context.Context, identifier, password string) (auth.Session, error) {
	var s auth.Session
	body := map[string]string{"identifier": identifier, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/login", body, &s); err != nil {
		return auth.Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *APIClient) Profile(ctx context.Context) (profile.Profile, error) {
	var p profile.Profile
	_, err := c.do(ctx, http.MethodGet, "/profile", nil, &p)
	return p, err
}

func (c *APIClient) AddEntry(ctx context.Context, provider, isbn string) (collection.Entry, error) {
	var e collection.Entry
	body := map[string]string{"isbn": isbn, "provider": provider}
	_, err := c.do(ctx, http.MethodPost, "/collection", body, &e)
	return e, err
}

func (c *APIClient) UpdateEntry(ctx context.Context, isbn string, patch collection.Patch) (collection.Entry, error) {
	var e collection.Entry
	_, err := c.do(ctx, http.MethodPut, "/collection/"+url.PathEscape(isbn), patch, &e)
	return e, err
}

func (c *APIClient) DeleteEntry(ctx context.Context, isbn string) error {
	_, err := c.do(ctx, http.MethodDelete, "/collection/"+url.PathEscape(isbn), nil, nil)
	return err
}

// GetBook fetches a local catalog book. A 404 also matches book.ErrNotFound.
func (c *APIClient) GetBook(ctx context.Context, id string) (book.Book, error) {
	var b book.Book
	if _, err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, &b); err != nil {
		if errors.Is(err, ErrNotFound) {
			return book.Book{}, fmt.Errorf("%w: %w", book.ErrNotFound, err)
		}
		return book.Book{}, err
	}
	return b, nil
}

// GetByID lets the client serve as a metadata.LocalCatalog.
func (c *APIClient) GetByID(ctx context.Context, id string) (book.Book, error) {
	return c.GetBook(ctx, id)
}

// Search queries the local catalog.
func (c *APIClient) Search(ctx context.Context, q book.Query) (book.Page, error) {
	v := url.Values{}
	v.Set("query", q.Q)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}

	var books []book.Book
	meta, err := c.do(ctx, http.MethodGet, "/search?"+v.Encode(), nil, &books)
	if err != nil {
		return book.Page{}, err
	}
	if books == nil {
		books = []book.Book{}
	}

	page := book.Page{Books: books}
	page.Total = metaInt(meta, "total")
	page.Limit = metaInt(meta, "limit")
	page.Offset = metaInt(meta, "offset")
	page.TotalPages = metaInt(meta, "totalPages")
	page.CurrentPage = metaInt(meta, "currentPage")
	page.HasMore, _ = meta["hasMore"].(bool)
	return page, nil
}

func (c *APIClient) CreateBook(ctx context.Context, cmd book.CreateCommand) (book.Book, error) {
	var b book.Book
	_, err := c.do(ctx, http.MethodPost, "/books", cmd, &b)
	return b, err
}

func metaInt(meta map[string]any, key string) int {
	f, _ := meta[key].(float64)
	return int(f)
}
