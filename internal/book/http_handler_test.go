package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookshelf/internal/httpx"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPHandler_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, 50))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Search(gomock.Any(), Query{Q: "hobbit", Sort: SortRating, Order: "desc", Limit: 1, Offset: 0}).
			Return([]Book{{ID: "1", Title: "The Hobbit"}}, 3, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/search?query=hobbit&limit=1&sort=rating&order=desc", nil)
		handler.Search(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool           `json:"success"`
			Data    []Book         `json:"data"`
			Meta    map[string]any `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, float64(3), resp.Meta["total"])
		assert.Equal(t, true, resp.Meta["hasMore"])
		assert.Equal(t, float64(3), resp.Meta["totalPages"])
		assert.Equal(t, float64(1), resp.Meta["currentPage"])
	})

	t.Run("short query", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/search?q=a", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.Search(w, httptest.NewRequest(http.MethodGet, "/search?q=hobbit", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, 50))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(Book{ID: "b-1", Title: "Test"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/b-1", nil)
		r.SetPathValue("id", "b-1")
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Test"`)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "b-2").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/b-2", nil)
		r.SetPathValue("id", "b-2")
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, 1))

	authed := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))
		return r.WithContext(httpx.ContextWithUser(r.Context(), "u-1", "USER"))
	}

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().CountByCreator(gomock.Any(), "u-1").Return(0, nil)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		handler.Create(w, authed(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593"}`))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("limit reached", func(t *testing.T) {
		mockRepo.EXPECT().CountByCreator(gomock.Any(), "u-1").Return(1, nil)

		w := httptest.NewRecorder()
		handler.Create(w, authed(`{"title":"Dune","author":"Frank Herbert"}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "LIMIT_REACHED", resp.Error.Code)
		assert.Equal(t, "Max number of books reached", resp.Error.Message)
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, authed(`{"title":"","author":"x","isbn":"123"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
