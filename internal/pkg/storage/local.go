// internal/pkg/storage/local.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/your-org/order-service/internal/config"
)

// LocalStore writes generated documents under the configured upload
// directory. Filenames are randomized so concurrent writers never
// collide.
type LocalStore struct {
	config *config.Config
}

// NewLocalStore creates a new local file store
func NewLocalStore(cfg *config.Config) *LocalStore {
	return &LocalStore{
		config: cfg,
	}
}

// Save streams content into a new file and returns its path. The name
// is "<prefix>_<uuid><ext>" inside the upload directory, which is
// created on first use.
func (s *LocalStore) Save(prefix, ext string, content io.Reader) (string, error) {
	dir := s.config.Upload.LocalPath
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *LocalStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
