package repositories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileChangeLogRepository appends audit lines to a plain text file.
type FileChangeLogRepository struct {
	path string
}

// NewFileChangeLogRepository creates a repository for the log at path.
func NewFileChangeLogRepository(path string) *FileChangeLogRepository {
	return &FileChangeLogRepository{path: path}
}

// Path returns the backing file location.
func (r *FileChangeLogRepository) Path() string {
	return r.path
}

// Append writes line followed by a newline, creating the file if needed.
func (r *FileChangeLogRepository) Append(line string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to prepare change log %s: %w", r.path, err)
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open change log %s: %w", r.path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to change log %s: %w", r.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close change log %s: %w", r.path, err)
	}
	return nil
}

// Lines reads the whole log.
func (r *FileChangeLogRepository) Lines() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read change log %s: %w", r.path, err)
	}

	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines, nil
}

// Truncate empties the log file, creating it if it does not exist.
func (r *FileChangeLogRepository) Truncate() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to prepare change log %s: %w", r.path, err)
	}
	if err := os.WriteFile(r.path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to truncate change log %s: %w", r.path, err)
	}
	return nil
}
