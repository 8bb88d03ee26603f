package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Journal {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenPath_Migrates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "journal.db")

	db, err := OpenPath(path)
	require.NoError(t, err)
	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// reopening an up to date database is a no-op
	db, err = OpenPath(path)
	require.NoError(t, err)
	defer db.Close()
	version, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestRunLifecycle(t *testing.T) {
	db := setupTestDB(t)

	run, err := db.StartRun("/media/movies", "plan-1")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, RunRunning, run.Status)

	stored, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/movies", stored.Root)
	assert.Equal(t, "plan-1", stored.PlanID)
	assert.Nil(t, stored.CompletedAt)
	assert.Zero(t, stored.Duration())

	stats := RunStats{Renamed: 3, Moved: 2, Deleted: 1, Failed: 1, Cleaned: 1}
	require.NoError(t, db.CompleteRun(run.ID, RunPartial, stats, "1 operation failed"))

	stored, err = db.GetRun(run.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, RunPartial, stored.Status)
	assert.Equal(t, stats, stored.Stats)
	assert.Equal(t, "1 operation failed", stored.ErrorMessage)
	require.NotNil(t, stored.CompletedAt)
	assert.False(t, stored.CompletedAt.Before(stored.StartedAt))
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = db.GetRun("")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.CompleteRun("missing", RunSuccess, RunStats{}, ""), ErrRunNotFound)
}

func TestRecentRuns(t *testing.T) {
	db := setupTestDB(t)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := db.StartRun("/media", "")
		require.NoError(t, err)
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Empty(t, runs[0].PlanID)
}

func TestLogOperations(t *testing.T) {
	db := setupTestDB(t)
	run, err := db.StartRun("/media", "")
	require.NoError(t, err)

	ops := []OperationLog{
		{OperationType: "move_rename", SourcePath: "/media/a.mkv", TargetPath: "/media/A (2000)/A (2000).mkv", Reason: "Standardize", Status: StatusOK, Duration: 15 * time.Millisecond},
		{OperationType: "delete", SourcePath: "/media/a.fre.srt", TargetPath: "/media/a.fre.srt", Status: StatusOK, BytesFreed: 2048},
		{OperationType: "rename", SourcePath: "/media/b.mkv", TargetPath: "/media/B.mkv", Status: StatusFailed, ErrorMessage: "permission denied"},
		{OperationType: "rename", SourcePath: "/media/c.mkv", TargetPath: "/media/C.mkv", Status: StatusSkipped},
	}
	require.NoError(t, db.LogOperations(run.ID, ops))

	logged, err := db.RunOperations(run.ID)
	require.NoError(t, err)
	require.Len(t, logged, 4)
	for i, op := range logged {
		assert.Equal(t, i+1, op.Seq)
		assert.Equal(t, run.ID, op.RunID)
		assert.Equal(t, ops[i].SourcePath, op.SourcePath)
		assert.Equal(t, ops[i].Status, op.Status)
	}
	assert.Equal(t, 15*time.Millisecond, logged[0].Duration)
	assert.Equal(t, "permission denied", logged[2].ErrorMessage)

	counts, freed, err := db.GetOperationStats()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"move_rename": 1, "delete": 1}, counts)
	assert.Equal(t, int64(2048), freed)

	history, err := db.SourceHistory("/media/A (2000)/A (2000).mkv")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "/media/a.mkv", history[0].SourcePath)
}

func TestDeleteRunsBefore(t *testing.T) {
	db := setupTestDB(t)
	run, err := db.StartRun("/media", "")
	require.NoError(t, err)
	require.NoError(t, db.LogOperations(run.ID, []OperationLog{
		{OperationType: "rename", SourcePath: "/media/a", TargetPath: "/media/b", Status: StatusOK},
	}))

	n, err := db.DeleteRunsBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.DeleteRunsBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ops, err := db.RunOperations(run.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	run, err := db.StartRun("/media", "")
	require.NoError(t, err)
	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}
