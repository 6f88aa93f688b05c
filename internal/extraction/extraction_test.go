package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("folio-001.jpg"))
	assert.True(t, IsImageFile("FOLIO-001.JPG"))
	assert.True(t, IsImageFile("scan.tiff"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("manifest.json"))
	assert.False(t, IsImageFile("noextension"))
}

func TestShouldIgnoreFile(t *testing.T) {
	assert.True(t, shouldIgnoreFile("._folio-001.jpg"))
	assert.True(t, shouldIgnoreFile(".DS_Store"))
	assert.True(t, shouldIgnoreFile(".hidden.png"))
	assert.False(t, shouldIgnoreFile("folio-001.jpg"))
}

func TestListImages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scans"), 0o755))
	for _, name := range []string{"scans/folio-001.jpg", "scans/folio-002.png", "scans/notes.txt", ".DS_Store"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte("x"), 0o644))
	}

	files, err := ListImages(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"scans/folio-001.jpg", "scans/folio-002.png"}, files)
}
