package media

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/naming"
)

// MediaType distinguishes movies from TV episodes
type MediaType int

const (
	Unknown MediaType = iota
	Movie
	TVShow
)

func (t MediaType) String() string {
	switch t {
	case Movie:
		return "movie"
	case TVShow:
		return "tvshow"
	default:
		return "unknown"
	}
}

// MediaInfo is what the classifier derives from a single video path.
type MediaInfo struct {
	FilePath string
	Type     MediaType

	// Season is valid when HasSeason is set; EpisodeStart/EpisodeEnd when
	// HasEpisode is set. EpisodeEnd == EpisodeStart unless the filename
	// encodes a multi-episode span.
	Season       int
	EpisodeStart int
	EpisodeEnd   int
	HasSeason    bool
	HasEpisode   bool

	Year  int
	Title string
}

func (m MediaInfo) IsMovie() bool  { return m.Type == Movie }
func (m MediaInfo) IsTVShow() bool { return m.Type == TVShow }

var firstNumberRegex = regexp.MustCompile(`\d+`)

// Detect classifies path from its name and its parent folder name only.
// Non-video files are always Unknown.
func Detect(path string) MediaInfo {
	info := MediaInfo{FilePath: path}
	if !IsVideo(path) {
		return info
	}

	stem := Stem(path)
	info.Year = naming.ExtractYear(stem)

	if ep, pos, ok := matchEpisode(stem); ok {
		info.Type = TVShow
		info.Season = ep.Season
		info.EpisodeStart = ep.Start
		info.EpisodeEnd = ep.End
		info.HasSeason = true
		info.HasEpisode = true
		info.Title = strings.Trim(stem[:pos], " .-_")
		if info.Title == "" {
			info.Title = stem
		}
		return info
	}

	if IsSeasonFolder(filepath.Base(filepath.Dir(path))) {
		info.Type = TVShow
		if n := firstNumberRegex.FindString(filepath.Base(filepath.Dir(path))); n != "" {
			info.Season = atoi(n)
			info.HasSeason = true
		}
		return info
	}

	info.Type = Movie
	info.Title = stem
	return info
}

// IsSeasonFolder reports whether a directory name starts with "Season" or
// "Temporada", ignoring case.
func IsSeasonFolder(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "season") || strings.HasPrefix(lower, "temporada")
}

// IsMovieFolder reports whether dir looks like a movie folder: no season
// subfolders and none of its first five videos carry an episode marker.
// Empty or unreadable folders count as movie folders.
func IsMovieFolder(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}

	var videos []string
	for _, e := range entries {
		if e.IsDir() {
			if IsSeasonFolder(e.Name()) {
				return false
			}
			continue
		}
		if IsVideo(e.Name()) {
			videos = append(videos, e.Name())
		}
	}
	sort.Strings(videos)

	for i, name := range videos {
		if i >= 5 {
			break
		}
		if _, ok := ExtractSeasonEpisode(Stem(name)); ok {
			return false
		}
	}
	return true
}

// IsTVFolder is the complement of IsMovieFolder.
func IsTVFolder(dir string) bool {
	return !IsMovieFolder(dir)
}
