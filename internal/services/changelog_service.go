package services

import (
	"fmt"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"
)

// DefaultRecentChanges is the window shown when no count is given.
const DefaultRecentChanges = 10

// ChangeLog formats store mutations into audit lines and appends them to its
// repository.
type ChangeLog struct {
	repo repositories.ChangeLogRepository
	now  func() time.Time
}

// NewChangeLog creates a change log over repo. A nil clock means time.Now.
func NewChangeLog(repo repositories.ChangeLogRepository, now func() time.Time) *ChangeLog {
	if now == nil {
		now = time.Now
	}
	return &ChangeLog{repo: repo, now: now}
}

// Record appends the entry describing one mutation and returns it.
func (c *ChangeLog) Record(kind models.ChangeKind, before, after *models.Product) (models.ChangeLogEntry, error) {
	entry, err := models.NewChangeLogEntry(kind, before, after, c.now())
	if err != nil {
		return models.ChangeLogEntry{}, err
	}
	if err := c.repo.Append(entry.Line()); err != nil {
		return entry, fmt.Errorf("failed to record %s change for %s: %w", kind, entry.ID, err)
	}
	return entry, nil
}

// Recent returns the last n lines, oldest first.
func (c *ChangeLog) Recent(n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	lines, err := c.repo.Lines()
	if err != nil {
		return nil, err
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

// Reset empties the log.
func (c *ChangeLog) Reset() error {
	return c.repo.Truncate()
}
