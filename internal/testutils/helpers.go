package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pagecraft"
	"github.com/stretchr/testify/require"
)

// WriteDocument writes content to name inside a fresh temp dir and returns
// the absolute path. It fails the test immediately on error.
func WriteDocument(t *testing.T, name, content string) string {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join(t.TempDir(), name))
	require.NoError(t, err, "Failed to get absolute path for temp file")
	require.NoError(t, os.WriteFile(absPath, []byte(content), 0o644), "Failed to write document")
	return absPath
}

// LoadEngine returns an engine holding the given document.
func LoadEngine(t *testing.T, document string, opts ...pagecraft.Option) *pagecraft.Engine {
	t.Helper()

	eng := pagecraft.New(opts...)
	require.NoError(t, eng.Load([]byte(document)), "Failed to load document")
	return eng
}
