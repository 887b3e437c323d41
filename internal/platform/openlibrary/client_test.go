package openlibrary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	var plain, typed, empty Text
	require.NoError(t, json.Unmarshal([]byte(`"a quest"`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"type":"/type/text","value":"a quest"}`), &typed))
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))

	assert.Equal(t, Text("a quest"), plain)
	assert.Equal(t, Text("a quest"), typed)
	assert.Equal(t, Text(""), empty)
}

func TestBookDetails_Pages(t *testing.T) {
	tests := []struct {
		name string
		in   BookDetails
		want int
	}{
		{"number_of_pages wins", BookDetails{NumberOfPages: 310, Pagination: "300 p."}, 310},
		{"leading integer of pagination", BookDetails{Pagination: "300 p."}, 300},
		{"roman pagination", BookDetails{Pagination: "xii, 300 p."}, 0},
		{"nothing", BookDetails{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Pages())
		})
	}
}

func TestClient_BookByISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		if r.URL.Query().Get("bibkeys") == "ISBN:9780547928241" {
			_, _ = w.Write([]byte(`{"ISBN:9780547928241":{"title":"The Hobbit","pagination":"300 p."}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	details, found, err := c.BookByISBN(context.Background(), "9780547928241")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "The Hobbit", details.Title)
	assert.Equal(t, 300, details.Pages())

	_, found, err = c.BookByISBN(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL, nil).BookByISBN(context.Background(), "9780547928241")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "hobbit", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"title":"The Hobbit","author_name":["J.R.R. Tolkien"],"isbn":["9780547928241"],"cover_i":42}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, nil).Search(context.Background(), "hobbit", 5)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, CoversBaseURL+"/b/id/42-M.jpg", res.Docs[0].CoverURL())
	assert.Empty(t, SearchDoc{}.CoverURL())
}
