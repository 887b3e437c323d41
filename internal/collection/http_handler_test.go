package collection

import (
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

func authed(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(httpx.ContextWithUser(r.Context(), "u-1", "USER"))
}

func TestHTTPHandler_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "u-1", "9780547928241").Return(Entry{}, ErrNotFound)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		handler.Add(w, authed(http.MethodPost, "/collection", `{"isbn":"9780547928241","provider":"openlibrary.org"}`))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Data Entry `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "u-1", resp.Data.UserID)
		assert.NotContains(t, w.Body.String(), `"rating"`)
	})

	t.Run("conflict", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "u-1", "9780547928241").Return(Entry{ID: "e-1"}, nil)

		w := httptest.NewRecorder()
		handler.Add(w, authed(http.MethodPost, "/collection", `{"isbn":"9780547928241","provider":"openlibrary.org"}`))

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "CONFLICT", resp.Error.Code)
		assert.Equal(t, "Book already in collection", resp.Error.Message)
	})

	t.Run("unknown provider", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Add(w, authed(http.MethodPost, "/collection", `{"isbn":"1","provider":"amazon"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"provider"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Add(w, authed(http.MethodPost, "/collection", `{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/collection", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("ok", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "u-1", "123").Return(Entry{ISBN: "123", UserID: "u-1"}, nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := authed(http.MethodPut, "/collection/123", `{"rating":4}`)
		r.SetPathValue("isbn", "123")
		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"rating":4`)
	})

	t.Run("invalid rating", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := authed(http.MethodPut, "/collection/123", `{"rating":9}`)
		r.SetPathValue("isbn", "123")
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "u-1", "999").Return(Entry{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := authed(http.MethodPut, "/collection/999", `{"read":true}`)
		r.SetPathValue("isbn", "999")
		handler.Update(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	mockRepo.EXPECT().Delete(gomock.Any(), "u-1", "123").Return(nil)
	w := httptest.NewRecorder()
	r := authed(http.MethodDelete, "/collection/123", "")
	r.SetPathValue("isbn", "123")
	handler.Remove(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockRepo.EXPECT().Delete(gomock.Any(), "u-1", "123").Return(ErrNotFound)
	w = httptest.NewRecorder()
	handler.Remove(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
