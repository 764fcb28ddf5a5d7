package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flatpack/internal/models"
)

// newTestStore opens an in-memory store and registers cleanup
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// makeRun builds a run with a started-at offset so ordering is
// deterministic
func makeRun(id string, minutesAgo int) Run {
	return Run{
		ID:         id,
		InputDir:   "/src/" + id,
		OutputDir:  "/out/" + id,
		Processed:  10,
		Converted:  4,
		Ignored:    2,
		Errors:     1,
		Collisions: 0,
		TotalBytes: 2048,
		Duration:   1500 * time.Millisecond,
		StartedAt:  time.Now().Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

// TestRecordAndListRuns verifies round-trip and newest-first ordering
func TestRecordAndListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, makeRun("old", 30)))
	require.NoError(t, store.RecordRun(ctx, makeRun("mid", 20)))
	require.NoError(t, store.RecordRun(ctx, makeRun("new", 10)))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
	assert.Equal(t, "old", runs[2].ID)

	got := runs[0]
	assert.Equal(t, "/src/new", got.InputDir)
	assert.Equal(t, "/out/new", got.OutputDir)
	assert.Equal(t, 10, got.Processed)
	assert.Equal(t, 4, got.Converted)
	assert.Equal(t, 2, got.Ignored)
	assert.Equal(t, 1, got.Errors)
	assert.Equal(t, int64(2048), got.TotalBytes)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
}

// TestListRunsLimit verifies the limit clause
func TestListRunsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, makeRun(fmt.Sprintf("run-%d", i), 50-i)))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
}

// TestListRunsEmpty verifies an empty store lists nothing
func TestListRunsEmpty(t *testing.T) {
	store := newTestStore(t)

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

// TestRecordRunDuplicateID verifies the primary key rejects reuse
func TestRecordRunDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, makeRun("same", 10)))
	assert.Error(t, store.RecordRun(ctx, makeRun("same", 5)))
}

// TestPrune verifies only the newest runs survive
func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, makeRun(fmt.Sprintf("run-%d", i), 50-i)))
	}

	require.NoError(t, store.Prune(ctx, 2))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
}

// TestPruneNoop verifies keep <= 0 deletes nothing
func TestPruneNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, makeRun("only", 10)))
	require.NoError(t, store.Prune(ctx, 0))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// TestClear verifies all rows are deleted and counted
func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, makeRun("a", 20)))
	require.NoError(t, store.RecordRun(ctx, makeRun("b", 10)))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

// TestNewStoreCreatesParentDir verifies file-backed stores create their
// directory
func TestNewStoreCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(context.Background(), makeRun("persisted", 1)))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// TestNewRunFromStats verifies the stats mapping
func TestNewRunFromStats(t *testing.T) {
	stats := models.RunStats{
		Processed:  7,
		Converted:  3,
		Ignored:    2,
		Errors:     1,
		Collisions: 1,
		TotalBytes: 999,
		StartedAt:  time.Now(),
		Duration:   2 * time.Second,
	}

	run := NewRun("id-1", "/in", "/out", stats)
	assert.Equal(t, "id-1", run.ID)
	assert.Equal(t, "/in", run.InputDir)
	assert.Equal(t, "/out", run.OutputDir)
	assert.Equal(t, 7, run.Processed)
	assert.Equal(t, 3, run.Converted)
	assert.Equal(t, 2, run.Ignored)
	assert.Equal(t, 1, run.Errors)
	assert.Equal(t, 1, run.Collisions)
	assert.Equal(t, int64(999), run.TotalBytes)
	assert.Equal(t, 2*time.Second, run.Duration)
}
