package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))

	for _, dialect := range []string{"postgres", "sqlite"} {
		dir := filepath.Join(repoRoot, "internal", "platform", "database", "migrations", dialect)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries, dialect)

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
				continue
			}
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			s := string(b)
			require.Contains(t, s, "-- +goose Up", "%s/%s", dialect, e.Name())
			require.Contains(t, s, "-- +goose Down", "%s/%s", dialect, e.Name())
		}
	}
}
