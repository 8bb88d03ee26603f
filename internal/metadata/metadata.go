// Package metadata resolves corrected titles, years and provider ids for
// videos. The planner only depends on the Resolver interface; TMDB is the
// shipped implementation.
package metadata

import (
	"context"
	"errors"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/naming"
)

var (
	// ErrNotFound is returned when a search produced no results
	ErrNotFound = errors.New("metadata not found")

	// ErrNoAPIKey is returned when the provider needs a key and none is set
	ErrNoAPIKey = errors.New("metadata api key not configured")
)

// Metadata is a resolved title. Zero values mean "unknown".
type Metadata struct {
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	TMDBID        int    `json:"tmdb_id,omitempty"`
	TVDBID        int    `json:"tvdb_id,omitempty"`
	IMDBID        string `json:"imdb_id,omitempty"`
	PosterPath    string `json:"poster_path,omitempty"`
	BackdropPath  string `json:"backdrop_path,omitempty"`
	OriginalTitle string `json:"original_title,omitempty"`
	Overview      string `json:"overview,omitempty"`
}

// FolderName renders the Jellyfin folder name, with the provider-id suffix
// when withIDs is set.
func (m Metadata) FolderName(withIDs bool) string {
	name := naming.FolderName(naming.Sanitize(m.Title), m.Year)
	if withIDs {
		name += naming.ProviderSuffix(m.TMDBID, m.IMDBID, m.TVDBID)
	}
	return name
}

// HasIDs reports whether any provider id is known.
func (m Metadata) HasIDs() bool {
	return m.TMDBID > 0 || m.TVDBID > 0 || m.IMDBID != ""
}

// Resolver looks up movies and series. year may be 0.
// Implementations return ErrNotFound when nothing matches.
type Resolver interface {
	SearchMovie(ctx context.Context, title string, year int) (*Metadata, error)
	SearchTVShow(ctx context.Context, title string, year int) (*Metadata, error)
}

// SearchFunc is one of Resolver's search methods.
type SearchFunc func(ctx context.Context, title string, year int) (*Metadata, error)

// SearchWithFallback calls search with title, then retries with the last word
// dropped each time, stopping at minWords words. At most
// len(words)-minWords+1 calls are made. Errors other than ErrNotFound stop
// the loop immediately.
func SearchWithFallback(ctx context.Context, search SearchFunc, title string, year, minWords int) (*Metadata, error) {
	if minWords < 1 {
		minWords = 1
	}
	words := strings.Fields(title)
	if len(words) == 0 {
		return nil, ErrNotFound
	}

	for n := len(words); n >= minWords && n > 0; n-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md, err := search(ctx, strings.Join(words[:n], " "), year)
		if err == nil && md != nil {
			return md, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}
