package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore is a Store that writes assets to a local directory and serves
// them under a base URL. The file name is a fresh UUID so uploads never
// collide or overwrite.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at dir, issuing URLs under baseURL.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes the data to disk and returns its URL.
func (s *DiskStore) Upload(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUpload)
	}
	name := uuid.NewString() + ".img"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return s.baseURL + "/" + name, nil
}

// Release deletes the asset behind a URL previously issued by Upload.
func (s *DiskStore) Release(_ context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return fmt.Errorf("unrecognized media url %q", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
