package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/imagecache"
)

var posterSizes = map[string]string{
	"small":    "w185",
	"medium":   "w342",
	"large":    "w500",
	"original": "original",
}

// PosterURL builds the TMDB image URL for a poster path and size name
// (small, medium, large, original). Unknown sizes use medium.
func PosterURL(posterPath, size string) string {
	code, ok := posterSizes[size]
	if !ok {
		code = posterSizes["medium"]
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return TMDBImageBaseURL + "/" + code + posterPath
}

// PosterCacheKey is the image-cache key for a poster.
func PosterCacheKey(tmdbID int, size string) string {
	return fmt.Sprintf("poster_%d_%s", tmdbID, size)
}

// PosterFetcher downloads posters through an image cache.
type PosterFetcher struct {
	Client  *http.Client
	Cache   *imagecache.Cache
	BaseURL string // overrides TMDBImageBaseURL
}

// Fetch returns a local path holding the poster for md, downloading it when
// it is not cached.
func (f *PosterFetcher) Fetch(ctx context.Context, md Metadata, size string) (string, error) {
	if md.PosterPath == "" || md.TMDBID == 0 {
		return "", ErrNotFound
	}
	key := PosterCacheKey(md.TMDBID, size)
	if path, ok := f.Cache.Get(key); ok {
		return path, nil
	}

	u := PosterURL(md.PosterPath, size)
	if f.BaseURL != "" {
		u = strings.Replace(u, TMDBImageBaseURL, strings.TrimSuffix(f.BaseURL, "/"), 1)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("poster download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster download: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return "", fmt.Errorf("poster download: %w", err)
	}
	ext := filepath.Ext(md.PosterPath)
	if ext == "" {
		ext = ".jpg"
	}
	return f.Cache.Save(key, data, ext)
}
