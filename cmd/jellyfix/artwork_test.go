package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/imagecache"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderMatches(t *testing.T) {
	heat := metadata.Metadata{Title: "Heat", Year: 1995, TMDBID: 949}
	assert.True(t, folderMatches("Heat (1995) [tmdbid-949]", heat, true))
	assert.False(t, folderMatches("Heat (1995)", heat, true))
	assert.True(t, folderMatches("Heat (1995)", heat, false))
	assert.False(t, folderMatches("Heatwave (2001)", heat, false))
	assert.True(t, folderMatches("Heat", metadata.Metadata{Title: "Heat"}, true))
}

func TestMovedFolders(t *testing.T) {
	result := &renamer.Result{Executed: []renamer.Outcome{
		{Op: renamer.Operation{Source: "/lib/a.mkv", Destination: "/lib/Heat (1995)/Heat (1995).mkv", Type: renamer.OpMoveRename}, Status: renamer.StatusOK},
		{Op: renamer.Operation{Source: "/lib/a.srt", Destination: "/lib/Heat (1995)/Heat (1995).por.srt", Type: renamer.OpMoveRename}, Status: renamer.StatusOK},
		{Op: renamer.Operation{Source: "/lib/e.mkv", Destination: "/lib/Dark/Season 01/Dark S01E01.mkv", Type: renamer.OpMoveRename}, Status: renamer.StatusOK},
		{Op: renamer.Operation{Source: "/lib/x.mkv", Destination: "/lib/X/X.mkv", Type: renamer.OpMoveRename}, Status: renamer.StatusFailed},
		{Op: renamer.Operation{Source: "/lib/y.fre.srt", Destination: "/lib/y.fre.srt", Type: renamer.OpDelete}, Status: renamer.StatusOK},
	}}
	assert.Equal(t, []string{"/lib/Heat (1995)", "/lib/Dark"}, movedFolders(result))
}

type stubResolver struct {
	movie *metadata.Metadata
}

func (s stubResolver) SearchMovie(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	if s.movie == nil {
		return nil, metadata.ErrNotFound
	}
	return s.movie, nil
}

func (s stubResolver) SearchTVShow(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	return nil, metadata.ErrNotFound
}

func TestRecordingResolver(t *testing.T) {
	r := newRecordingResolver(stubResolver{movie: &metadata.Metadata{Title: "Heat", TMDBID: 949}})

	_, err := r.SearchMovie(context.Background(), "heat", 1995)
	require.NoError(t, err)
	_, err = r.SearchTVShow(context.Background(), "heat", 0)
	assert.ErrorIs(t, err, metadata.ErrNotFound)

	got := r.Take()
	require.Len(t, got, 1)
	assert.Equal(t, 949, got[0].TMDBID)
	assert.Empty(t, r.Take())

	var none *recordingResolver
	assert.Nil(t, none.Take())
}

func TestWritePosters(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	cache, err := imagecache.Open(t.TempDir(), 30)
	require.NoError(t, err)
	fetcher := &metadata.PosterFetcher{Client: srv.Client(), Cache: cache, BaseURL: srv.URL}

	lib := t.TempDir()
	folder := filepath.Join(lib, "Heat (1995) [tmdbid-949]")
	other := filepath.Join(lib, "Ronin (1998) [tmdbid-8195]")
	require.NoError(t, os.MkdirAll(folder, 0755))
	require.NoError(t, os.MkdirAll(other, 0755))

	e := &env{cfg: config.DefaultConfig(), logger: logging.Nop()}
	resolved := []metadata.Metadata{
		{Title: "Heat", Year: 1995, TMDBID: 949, PosterPath: "/heat.jpg"},
		{Title: "Heat", Year: 1995, TMDBID: 949, PosterPath: "/heat.jpg"},
		{Title: "Ronin", Year: 1998, TMDBID: 8195},
	}

	n := writePosters(context.Background(), e, fetcher, resolved, []string{folder, other})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, hits)
	data, err := os.ReadFile(filepath.Join(folder, posterFile))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
	assert.NoFileExists(t, filepath.Join(other, posterFile))

	// an existing poster is kept and the download is served from the cache
	n = writePosters(context.Background(), e, fetcher, resolved[:1], []string{folder})
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, hits)
}
