package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{
		"b.yml",
		"a.yaml",
		"notes.txt",
		"nested/c.yml",
		".hidden/d.yml",
		".e.yml",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".yml", ".yaml")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "b.yml"),
		filepath.Join(root, "nested", "c.yml"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	files, err := FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".yml")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension_NoExtensions(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension(t.TempDir())
	})
}
