// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB returns a migrated SQLite database in a temp dir, closed when
// the test ends.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DialectSQLite))
	return db
}

// GenerateTestToken signs a valid one hour token for userID.
func GenerateTestToken(t testing.TB, secret, userID string) string {
	t.Helper()
	tok, err := crypto.GenerateToken(secret, userID, "USER", time.Hour)
	require.NoError(t, err)
	return tok.Value
}

// GenerateExpiredToken signs a token for userID that expired an hour ago.
func GenerateExpiredToken(t testing.TB, secret, userID string) string {
	t.Helper()
	c := crypto.Claims{
		Sub:  userID,
		Role: "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    crypto.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// NewRequest builds a request with body encoded as JSON. A nil body sends
// no payload.
func NewRequest(t testing.TB, method, path string, body any) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(method, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth is NewRequest with a bearer token.
func NewRequestWithAuth(t testing.TB, method, path string, body any, token string) *http.Request {
	r := NewRequest(t, method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Envelope is the decoded form of every JSON API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeEnvelope decodes the recorded response body.
func DecodeEnvelope(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}
