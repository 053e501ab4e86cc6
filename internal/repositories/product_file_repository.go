package repositories

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gudang/internal/codec"
	"gudang/internal/models"
)

// FileProductRepository keeps the collection in a flat delimited text file.
type FileProductRepository struct {
	path string
}

// NewFileProductRepository creates a repository backed by the file at path.
// The file is created on the first Save.
func NewFileProductRepository(path string) *FileProductRepository {
	return &FileProductRepository{path: path}
}

// Path returns the backing file location.
func (r *FileProductRepository) Path() string {
	return r.path
}

// Load decodes the file. Malformed lines are dropped and counted.
func (r *FileProductRepository) Load(limit int) (codec.Result, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return codec.Result{}, nil
		}
		return codec.Result{}, fmt.Errorf("failed to open inventory file %s: %w", r.path, err)
	}
	defer f.Close()

	return codec.Decode(f, limit)
}

// Save rewrites the whole file through a temporary sibling and a rename, so a
// failed write leaves the previous content in place.
func (r *FileProductRepository) Save(products []models.Product) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, products); err != nil {
		return err
	}
	if err := writeFileAtomic(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save inventory file %s: %w", r.path, err)
	}
	return nil
}

// Truncate leaves an empty collection file behind.
func (r *FileProductRepository) Truncate() error {
	if err := writeFileAtomic(r.path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to truncate inventory file %s: %w", r.path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
