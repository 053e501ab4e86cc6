package repositories

import "sync"

// MemoryChangeLogRepository is an in-memory implementation of ChangeLogRepository.
type MemoryChangeLogRepository struct {
	lines []string
	mu    sync.RWMutex
}

// NewMemoryChangeLogRepository creates an empty in-memory log.
func NewMemoryChangeLogRepository() *MemoryChangeLogRepository {
	return &MemoryChangeLogRepository{}
}

// Append stores line.
func (r *MemoryChangeLogRepository) Append(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, line)
	return nil
}

// Lines returns a copy of the stored lines.
func (r *MemoryChangeLogRepository) Lines() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.lines...), nil
}

// Truncate drops all lines.
func (r *MemoryChangeLogRepository) Truncate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = nil
	return nil
}
