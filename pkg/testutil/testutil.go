// Package testutil provides helpers for building filesystem fixtures in
// tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree materializes a file tree under root. Keys ending in "/"
// create directories; all other keys create files with the mapped
// content, creating parent directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(abs, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
}

// TempTree creates a temp directory populated via WriteTree
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// Symlink creates a symbolic link, skipping the test if the platform
// does not support them.
func Symlink(t *testing.T, target, link string) {
	t.Helper()

	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
}
