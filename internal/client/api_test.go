package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/collection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, meta map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data, "meta": meta})
}

func writeFailure(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": msg},
	})
}

func TestAPIClient_LoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "Hobbit123" {
			writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]any{"id": "u-1", "username": body["identifier"]}}, nil)
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "u-1", "username": "test", "collection": []any{
			map[string]any{"isbn": "1", "provider": "openlibrary.org", "read": true, "rating": 5},
		}}, nil)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/", srv.Client())
	ctx := context.Background()

	_, err := c.Profile(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "test", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	s, err := c.Login(ctx, "test", "Hobbit123")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "tok", c.Token())

	p, err := c.Profile(ctx)
	require.NoError(t, err)
	require.Len(t, p.Collection, 1)
	assert.Equal(t, 5, *p.Collection[0].Rating)
}

func TestAPIClient_Collection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collection", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusConflict, "CONFLICT", "Book already in collection")
	})
	mux.HandleFunc("PUT /collection/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var patch collection.Patch
		require.NoError(t, json.Unmarshal(body, &patch))
		require.NotNil(t, patch.Read)
		writeEnvelope(w, http.StatusOK, collection.Entry{ISBN: r.PathValue("isbn"), Read: *patch.Read}, nil)
	})
	mux.HandleFunc("DELETE /collection/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAPIClient(srv.URL, srv.Client())
	ctx := context.Background()

	_, err := c.AddEntry(ctx, "openlibrary.org", "1")
	assert.ErrorIs(t, err, ErrConflict)

	read := true
	e, err := c.UpdateEntry(ctx, "978-1", collection.Patch{Read: &read})
	require.NoError(t, err)
	assert.Equal(t, "978-1", e.ISBN)
	assert.True(t, e.Read)

	assert.NoError(t, c.DeleteEntry(ctx, "1"))
}

func TestAPIClient_LocalCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "b-1" {
			writeFailure(w, http.StatusNotFound, "NOT_FOUND", "Book not found")
			return
		}
		writeEnvelope(w, http.StatusOK, book.Book{ID: "b-1", Title: "Notes"}, nil)
	})
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "notes", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeEnvelope(w, http.StatusOK, []book.Book{{ID: "b-1"}}, map[string]any{
			"total": 6, "limit": 5, "offset": 0, "hasMore": true, "totalPages": 2, "currentPage": 1,
		})
	})
	mux.HandleFunc("POST /books", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusForbidden, "LIMIT_REACHED", "Max number of books reached")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAPIClient(srv.URL, srv.Client())
	ctx := context.Background()

	b, err := c.GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "Notes", b.Title)

	_, err = c.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := c.Search(ctx, book.Query{Q: "notes", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, page.TotalPages)

	_, err = c.CreateBook(ctx, book.CreateCommand{Title: "x", Author: "y"})
	assert.ErrorIs(t, err, ErrLimitReached)
}
