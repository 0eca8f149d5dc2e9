// Package fs stores rendered request PDFs on the local filesystem.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/opra"
)

// Ensure BlobStore implements opra.BlobStore at compile time.
var _ opra.BlobStore = (*BlobStore)(nil)

// BlobStore implements opra.BlobStore in a directory. Objects are written to
// a temporary file and renamed into place, so readers never see a partial PDF.
type BlobStore struct {
	dir string
}

// NewBlobStore returns a BlobStore rooted at dir.
func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{dir: dir}
}

// KeyToPath converts an object key to a path under the store directory.
// Keys that escape the directory are rejected.
func (s *BlobStore) KeyToPath(key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(key), "/")
	if key == "" {
		return "", opra.Errorf(opra.EINVALID, "blob key required")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", opra.Errorf(opra.EINVALID, "invalid blob key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

// Store writes body under key and returns a file:// URL to it.
func (s *BlobStore) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.KeyToPath(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Delete removes the object under key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	path, err := s.KeyToPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
