package extraction

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// imageExtensions lists the file types accepted as annotatable images.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tif": true, ".tiff": true,
	".bmp": true, ".gif": true, ".webp": true,
}

// shouldIgnoreFile checks if a file should be ignored (system files,
// hidden files, etc.).
func shouldIgnoreFile(filename string) bool {
	// macOS resource forks and .DS_Store
	if strings.HasPrefix(filename, "._") || filename == ".DS_Store" {
		return true
	}
	if strings.HasPrefix(filename, ".") {
		return true
	}
	return false
}

// IsImageFile reports whether the filename carries a supported image
// extension.
func IsImageFile(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ExtractImages extracts the image files of a ZIP or similar archive into
// destDir and returns their paths relative to destDir. Non-image and
// system files are skipped.
func ExtractImages(ctx context.Context, archivePath, destDir string) ([]string, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if shouldIgnoreFile(d.Name()) || !IsImageFile(d.Name()) {
			return nil
		}
		reader, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		destPath := filepath.Join(destDir, path)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer outFile.Close()

		if _, err := io.Copy(outFile, reader); err != nil {
			return err
		}

		files = append(files, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListImages walks a directory tree and returns the image files relative
// to root, for flat filesystem imports that reference a directory already
// present on disk.
func ListImages(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if shouldIgnoreFile(d.Name()) || !IsImageFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
