package repositories_test

import (
	"os"
	"path/filepath"
	"testing"

	"gudang/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileChangeLogRepository_MissingLog(t *testing.T) {
	repo := repositories.NewFileChangeLogRepository(filepath.Join(t.TempDir(), "inventory.txt"))

	lines, err := repo.Lines()
	assert.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFileChangeLogRepository_AppendCreatesAndKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.txt")
	repo := repositories.NewFileChangeLogRepository(path)

	require.NoError(t, repo.Append("first"))
	require.NoError(t, repo.Append("second"))

	// A new handle on the same file appends instead of truncating.
	require.NoError(t, repositories.NewFileChangeLogRepository(path).Append("third"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(data))

	lines, err := repo.Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestFileChangeLogRepository_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.txt")
	repo := repositories.NewFileChangeLogRepository(path)
	require.NoError(t, repo.Append("entry"))

	require.NoError(t, repo.Truncate())

	lines, err := repo.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, repo.Append("after reset"))
	lines, err = repo.Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"after reset"}, lines)
}

func TestMemoryChangeLogRepository(t *testing.T) {
	repo := repositories.NewMemoryChangeLogRepository()
	require.NoError(t, repo.Append("a"))
	require.NoError(t, repo.Append("b"))

	lines, err := repo.Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	require.NoError(t, repo.Truncate())
	lines, err = repo.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
