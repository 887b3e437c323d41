// Package googlebooks is a thin client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://www.googleapis.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("googlebooks: unexpected status code: %d", e.Code)
}

type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type Identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type VolumeInfo struct {
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	Description         string       `json:"description"`
	PublishedDate       string       `json:"publishedDate"`
	PageCount           int          `json:"pageCount"`
	IndustryIdentifiers []Identifier `json:"industryIdentifiers"`
	ImageLinks          struct {
		SmallThumbnail string `json:"smallThumbnail"`
		Thumbnail      string `json:"thumbnail"`
		Large          string `json:"large"`
	} `json:"imageLinks"`
}

// ISBN returns the ISBN_13 identifier, else the first identifier, else "".
func (v VolumeInfo) ISBN() string {
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" && id.Identifier != "" {
			return id.Identifier
		}
	}
	if len(v.IndustryIdentifiers) > 0 {
		return v.IndustryIdentifiers[0].Identifier
	}
	return ""
}

// VolumesByISBN queries volumes?q=isbn:{isbn}.
func (c *Client) VolumesByISBN(ctx context.Context, isbn string) (*VolumesResponse, error) {
	return c.volumes(ctx, "isbn:"+isbn, 0)
}

// Search runs a free-text volumes query. limit <= 0 leaves the upstream default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*VolumesResponse, error) {
	return c.volumes(ctx, query, limit)
}

func (c *Client) volumes(ctx context.Context, query string, limit int) (*VolumesResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		if limit > 40 {
			limit = 40
		}
		q.Set("maxResults", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books/v1/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var res VolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("googlebooks: decode response: %w", err)
	}
	return &res, nil
}
