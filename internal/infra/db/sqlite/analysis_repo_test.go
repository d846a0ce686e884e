package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

func newRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	db, err := Open(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	require.NoError(t, repo.Migrate(t.Context()))
	return repo
}

func TestSaveAndLatest(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(t.Context(), &domain.Request{
			TaskID:         domain.TaskID(fmt.Sprintf("task-%d", i)),
			Timestamp:      base.Add(time.Duration(i) * 1500 * time.Millisecond),
			Question:       "q",
			FilesProcessed: []string{"a.csv"},
			Status:         domain.StatusCompleted,
		}))
	}

	got, err := repo.Latest(t.Context(), 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.TaskID("task-2"), got[0].TaskID)
	assert.Equal(t, domain.TaskID("task-0"), got[2].TaskID)
	assert.Equal(t, []string{"a.csv"}, got[0].FilesProcessed)
	assert.True(t, got[0].Timestamp.Equal(base.Add(3*time.Second)))
}

func TestLatestRespectsLimit(t *testing.T) {
	repo := newRepo(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(t.Context(), &domain.Request{
			TaskID: domain.TaskID(fmt.Sprintf("t%d", i)), Timestamp: time.Now(), Status: domain.StatusError,
		}))
	}

	got, err := repo.Latest(t.Context(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{}, got[0].FilesProcessed)
}

func TestSaveRejectsDuplicateTaskID(t *testing.T) {
	repo := newRepo(t)
	req := &domain.Request{TaskID: "same", Timestamp: time.Now(), Status: domain.StatusCompleted}
	require.NoError(t, repo.Save(t.Context(), req))
	assert.Error(t, repo.Save(t.Context(), req))
}

func TestOpenCreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analysis.db")
	db, err := Open(t.Context(), path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, NewAnalysisRepository(db).Migrate(t.Context()))
	assert.FileExists(t, path)
}
