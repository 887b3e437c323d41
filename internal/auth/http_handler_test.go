package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookshelf/internal/httpx"
	"bookshelf/internal/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPHandler_Register(t *testing.T) {
	svc, repo := newTestService(t)
	handler := NewHTTPHandler(svc)

	t.Run("created", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(user.User{}, user.ErrNotFound)
		repo.EXPECT().GetByUsername(gomock.Any(), "test").Return(user.User{}, user.ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		body := `{"username":"test","email":"test@example.com","password":"Hobbit123"}`
		w := httptest.NewRecorder()
		handler.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool    `json:"success"`
			Data    Session `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.Token)
		assert.Equal(t, "test", resp.Data.User.Username)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("conflict", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user.User{ID: "1"}, nil)

		body := `{"username":"test","email":"test@example.com","password":"Hobbit123"}`
		w := httptest.NewRecorder()
		handler.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		body := `{"username":"a b","email":"nope","password":"weak"}`
		w := httptest.NewRecorder()
		handler.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Len(t, resp.Error.Details, 3)
	})

	t.Run("bad json", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	svc, repo := newTestService(t)
	handler := NewHTTPHandler(svc)

	t.Run("unauthorized", func(t *testing.T) {
		repo.EXPECT().GetByUsername(gomock.Any(), "test").Return(user.User{}, user.ErrNotFound)

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"identifier":"test","password":"x"}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
