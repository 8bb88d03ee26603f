package plans

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *renamer.Plan {
	return &renamer.Plan{
		Root: "/media/movies",
		Operations: []renamer.Operation{
			{Source: "/media/movies/a.mkv", Destination: "/media/movies/A (2000)/A (2000).mkv", Type: renamer.OpMoveRename, Reason: "Standardize movie name"},
			{Source: "/media/movies/b.mkv", Destination: "/media/movies/B.mkv", Type: renamer.OpRename},
			{Source: "/media/movies/a.fre.srt", Destination: "/media/movies/a.fre.srt", Type: renamer.OpDelete},
		},
		Conflicts: []renamer.Conflict{
			{Source: "/media/movies/c.mkv", Destination: "/media/movies/A (2000)/A (2000).mkv", Reason: "destination already claimed"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "plans"))

	saved, err := store.Save(samplePlan(), "plan")
	require.NoError(t, err)
	assert.Equal(t, Summary{Renames: 1, Moves: 1, Deletes: 1, Conflicts: 1}, saved.Summary)
	assert.FileExists(t, filepath.Join(store.Dir(), saved.ID+".json"))

	loaded, err := store.Load(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "plan", loaded.Command)
	assert.Equal(t, samplePlan(), loaded.Plan)
	assert.WithinDuration(t, saved.CreatedAt, loaded.CreatedAt, time.Second)

	byPrefix, err := store.Load(saved.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byPrefix.ID)
}

func TestLoadLatest(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load(Latest)
	assert.ErrorIs(t, err, ErrNoPlan)

	_, err = store.Save(samplePlan(), "plan")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.Save(&renamer.Plan{Root: "/media/tv"}, "watch")
	require.NoError(t, err)

	latest, err := store.Load(Latest)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "/media/tv", latest.Plan.Root)

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("does-not-exist")
	assert.ErrorIs(t, err, ErrNoPlan)
	assert.ErrorIs(t, store.Delete("does-not-exist"), ErrNoPlan)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644))
	_, err := store.Save(samplePlan(), "plan")
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "none"))
	all, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteAndPrune(t *testing.T) {
	store := NewStore(t.TempDir())
	first, err := store.Save(samplePlan(), "plan")
	require.NoError(t, err)
	_, err = store.Save(samplePlan(), "plan")
	require.NoError(t, err)

	require.NoError(t, store.Delete(first.ID))
	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	removed, err := store.Prune(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = store.Prune(-time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestDefaultStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)

	store, err := DefaultStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "plans"), store.Dir())
}
