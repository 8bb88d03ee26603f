package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/database"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/Nomadcxx/jellyfix/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useHome points every application path at a temp dir and keeps metadata
// lookups offline.
func useHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)
	t.Setenv("TMDB_API_KEY", "")
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ui.DisableColors()
	var buf bytes.Buffer
	prev := ui.SetOutput(&buf)
	defer ui.SetOutput(prev)

	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--quiet"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func library(t *testing.T) (root, video string) {
	t.Helper()
	root = t.TempDir()
	video = filepath.Join(root, "The.Matrix.1999.1080p.BluRay.mkv")
	require.NoError(t, os.WriteFile(video, []byte("video"), 0644))
	return root, video
}

func organized(root string) string {
	return filepath.Join(root, "The Matrix (1999)", "The Matrix (1999) - 1080p.mkv")
}

func TestScanCmd(t *testing.T) {
	useHome(t)
	root, _ := library(t)

	out, err := execute(t, "scan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Movies")
}

func TestPlanCmd_DoesNotTouchFiles(t *testing.T) {
	useHome(t)
	root, video := library(t)

	out, err := execute(t, "plan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "The Matrix (1999)")
	assert.FileExists(t, video)
	assert.NoFileExists(t, organized(root))
}

func TestApplyCmd_DefaultsToDryRun(t *testing.T) {
	home := useHome(t)
	root, video := library(t)

	out, err := execute(t, "apply", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.FileExists(t, video)
	assert.NoFileExists(t, filepath.Join(home, "journal.db"))
}

func TestApplyCmd_NeedsDirectoryOrPlan(t *testing.T) {
	useHome(t)
	_, err := execute(t, "apply")
	assert.Error(t, err)

	root, _ := library(t)
	_, err = execute(t, "apply", root, "--plan", "latest")
	assert.Error(t, err)
}

func TestSavedPlanApplyAndHistory(t *testing.T) {
	useHome(t)
	root, video := library(t)

	out, err := execute(t, "plan", root, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved plan")

	out, err = execute(t, "plans")
	require.NoError(t, err)
	assert.Contains(t, out, root)

	_, err = execute(t, "apply", "--plan", "latest", "--dry-run=false", "--yes")
	require.NoError(t, err)
	assert.NoFileExists(t, video)
	assert.FileExists(t, organized(root))

	journal, err := database.Open()
	require.NoError(t, err)
	runs, err := journal.RecentRuns(5)
	require.NoError(t, err)
	require.NoError(t, journal.Close())
	require.Len(t, runs, 1)
	assert.Equal(t, database.RunSuccess, runs[0].Status)
	assert.NotEmpty(t, runs[0].PlanID)

	out, err = execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID[:8])

	out, err = execute(t, "history", runs[0].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "The Matrix (1999) - 1080p.mkv")

	out, err = execute(t, "history", "--file", organized(root))
	require.NoError(t, err)
	assert.Contains(t, out, "move_rename")

	// the library is now a fixed point
	out, err = execute(t, "plan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "already organized")
}

func TestApplyCmd_NoPlans(t *testing.T) {
	useHome(t)
	_, err := execute(t, "apply", "--plan", "latest", "--yes")
	assert.Error(t, err)
}

func TestReplanCmd(t *testing.T) {
	useHome(t)
	root := t.TempDir()
	video := filepath.Join(root, "Matrix 2.mkv")
	require.NoError(t, os.WriteFile(video, []byte("video"), 0644))

	out, err := execute(t, "replan", video, "--title", "The Matrix Reloaded", "--year", "2003", "--tmdb", "604")
	require.NoError(t, err)
	assert.Contains(t, out, "The Matrix Reloaded (2003) [tmdbid-604]")

	_, err = execute(t, "replan", video)
	assert.Error(t, err)
}

func TestConfigCmds(t *testing.T) {
	home := useHome(t)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, "config.json"))

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, "config.json"))

	_, err = execute(t, "config", "init")
	assert.Error(t, err)

	t.Setenv("TMDB_API_KEY", "abcdef123456")
	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "****3456")
	assert.NotContains(t, out, "abcdef123456")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jellyfix")
}

func TestWatchHandler_Applies(t *testing.T) {
	useHome(t)
	root, video := library(t)

	cfg := config.DefaultConfig()
	cfg.Metadata.Enabled = false
	e := &env{cfg: cfg, logger: logging.Nop()}
	h := &watchHandler{env: e, planner: renamer.New(cfg), apply: true}

	var buf bytes.Buffer
	prev := ui.SetOutput(&buf)
	defer ui.SetOutput(prev)

	require.NoError(t, h.HandleBatch(context.Background(), watcher.Batch{Roots: []string{root}}))
	assert.NoFileExists(t, video)
	assert.FileExists(t, organized(root))

	// the second pass sees an organized tree
	buf.Reset()
	require.NoError(t, h.HandleBatch(context.Background(), watcher.Batch{Roots: []string{root}}))
	assert.Empty(t, buf.String())
}

func TestWatchHandler_PreviewOnly(t *testing.T) {
	useHome(t)
	root, video := library(t)

	cfg := config.DefaultConfig()
	cfg.Metadata.Enabled = false
	h := &watchHandler{env: &env{cfg: cfg, logger: logging.Nop()}, planner: renamer.New(cfg)}

	var buf bytes.Buffer
	prev := ui.SetOutput(&buf)
	defer ui.SetOutput(prev)

	require.NoError(t, h.HandleBatch(context.Background(), watcher.Batch{Roots: []string{root}}))
	assert.FileExists(t, video)
	assert.Contains(t, buf.String(), "move_rename")
}

func TestDefaultReplanRoot(t *testing.T) {
	assert.Equal(t, "/tv/Show", defaultReplanRoot("/tv/Show/Season 01/ep.mkv"))
	assert.Equal(t, "/movies", defaultReplanRoot("/movies/film.mkv"))
}
