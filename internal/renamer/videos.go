package renamer

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/naming"
	"github.com/Nomadcxx/jellyfix/internal/quality"
)

// rawTitle is the title text the classifier found, or the stem.
func rawTitle(path string, info media.MediaInfo) string {
	if info.Title != "" {
		return info.Title
	}
	return media.Stem(path)
}

// titling is the resolved naming of one title.
type titling struct {
	title  string
	year   int
	suffix string
	md     *metadata.Metadata
}

func (t titling) folder() string {
	return naming.FolderName(t.title, t.year) + t.suffix
}

// planVideo runs phase 1 for one file. override replaces the metadata
// lookup (replan mode).
func (s *session) planVideo(path string, override *metadata.Metadata) {
	info := media.Detect(path)
	switch {
	case info.IsMovie():
		s.planMovie(path, info, override)
	case info.IsTVShow():
		s.planEpisode(path, info, override)
	}
}

func (s *session) planMovie(path string, info media.MediaInfo, override *metadata.Metadata) {
	title, year := naming.CleanTitle(rawTitle(path, info))
	if title == "" {
		return
	}
	t := s.resolve(false, title, year, override)

	parent := filepath.Dir(path)
	newDir := s.placeFolder(parent, &t)
	if !s.p.cfg.Organize.OrganizeFolders {
		newDir = parent
	}

	newStem := naming.WithQuality(naming.FolderName(t.title, t.year), s.qualityTag(path))
	vp := &videoPlan{
		source:       path,
		oldDir:       parent,
		newDir:       newDir,
		newStem:      newStem,
		container:    parent,
		newContainer: newDir,
	}
	dst := filepath.Join(newDir, newStem+filepath.Ext(path))
	s.commitVideo(vp, dst, fmt.Sprintf("Standardize movie name: %s -> %s", filepath.Base(path), filepath.Base(dst)))
}

func (s *session) planEpisode(path string, info media.MediaInfo, override *metadata.Metadata) {
	if !info.HasSeason || !info.HasEpisode {
		s.p.logger.Debug("planner", "Episode without season/episode numbers", logging.F("path", path))
		return
	}

	parent := filepath.Dir(path)
	seriesDir := s.containerOf(path, info)

	title, year := naming.CleanTitle(rawTitle(path, info))
	if _, isTag := media.ExtractSeasonEpisode(title); isTag || title == "" {
		// "S01E05.mkv" inside its series folder
		if s.isAnchor(seriesDir) {
			s.p.logger.Debug("planner", "Episode without a series title", logging.F("path", path))
			return
		}
		title, year = naming.CleanTitle(filepath.Base(seriesDir))
		if title == "" {
			return
		}
	}
	t := s.resolve(true, title, year, override)

	newSeries := s.placeFolder(seriesDir, &t)
	newDir := filepath.Join(newSeries, naming.SeasonFolder(info.Season))
	if !s.p.cfg.Organize.OrganizeFolders {
		newSeries, newDir = seriesDir, parent
	}

	newStem := naming.WithQuality(t.title+" "+naming.EpisodeTag(info.Season, info.EpisodeStart, info.EpisodeEnd), s.qualityTag(path))
	vp := &videoPlan{
		source:       path,
		oldDir:       parent,
		newDir:       newDir,
		newStem:      newStem,
		container:    seriesDir,
		newContainer: newSeries,
		tv:           true,
	}
	dst := filepath.Join(newDir, newStem+filepath.Ext(path))

	reason := fmt.Sprintf("Standardize episode: %s -> %s", filepath.Base(path), filepath.Base(dst))
	if newSeries != seriesDir {
		reason = fmt.Sprintf("Organize series folder: %s -> %s", filepath.Base(seriesDir), filepath.Base(newSeries))
	}
	s.commitVideo(vp, dst, reason)
}

// commitVideo emits the video's operation, if any, and registers it for the
// companion phases. A video whose destination is taken, by another
// operation or a file on disk, stays where it is along with its companions.
func (s *session) commitVideo(vp *videoPlan, dst, reason string) {
	exists := dst != vp.source && fileExists(dst)
	if exists {
		s.conflict(vp.source, dst, "destination already exists")
	}
	if !exists && dst != vp.source && s.relocate(vp.source, dst, reason) {
		vp.dest = dst
		vp.moved = true
	} else {
		vp.dest = vp.source
		vp.newDir = vp.oldDir
		vp.newStem = media.Stem(vp.source)
		vp.newContainer = vp.container
	}
	s.register(vp)
}

// placeFolder returns the directory a title should live in, given the folder
// it currently owns. Titles sitting in an anchor get a new subfolder. An
// owned folder that already renders the title is kept, adopting its year and
// provider suffix when no metadata was resolved; otherwise it is replaced by
// a correctly named sibling.
func (s *session) placeFolder(owned string, t *titling) string {
	if s.isAnchor(owned) {
		return filepath.Join(owned, t.folder())
	}

	name := filepath.Base(owned)
	if t.md == nil {
		if title, year, suffix, ok := adoptFolder(name, t.title, t.year); ok {
			t.title, t.year, t.suffix = title, year, suffix
			return owned
		}
	} else if name == t.folder() || (t.suffix == "" && naming.MatchesFolder(name, t.title, t.year)) {
		return owned
	}
	return filepath.Join(filepath.Dir(owned), t.folder())
}

// releaseSeparators matches dot or underscore separated names ("Breaking.Bad").
var releaseSeparators = regexp.MustCompile(`[._][A-Za-z0-9]`)

// adoptFolder accepts an existing folder name whose title normalizes to
// title and whose year agrees with year (any year when year is 0). Release
// style folder names are never adopted.
func adoptFolder(folder, title string, year int) (string, int, string, bool) {
	ft, fy, suffix := naming.ParseFolder(folder)
	if ft != title && releaseSeparators.MatchString(ft) {
		return "", 0, "", false
	}
	if naming.NormalizeKey(ft) != naming.NormalizeKey(title) {
		return "", 0, "", false
	}
	if year != 0 && fy != year {
		return "", 0, "", false
	}
	return naming.Sanitize(ft), fy, suffix, true
}

// resolve folds metadata into the filename-derived title. Lookups are
// cached per session so the episodes of one series cost a single search.
func (s *session) resolve(tv bool, title string, year int, override *metadata.Metadata) titling {
	t := titling{title: title, year: year}

	md := override
	if md == nil && s.p.resolver != nil && s.p.cfg.Metadata.Enabled {
		md = s.lookup(tv, title, year)
	}
	if md == nil || naming.Sanitize(md.Title) == "" {
		return t
	}

	t.md = md
	t.title = naming.Sanitize(md.Title)
	if md.Year > 0 {
		t.year = md.Year
	}
	if s.p.cfg.Metadata.ProviderIDs {
		t.suffix = naming.ProviderSuffix(md.TMDBID, md.IMDBID, md.TVDBID)
	}
	return t
}

func (s *session) lookup(tv bool, title string, year int) *metadata.Metadata {
	key := fmt.Sprintf("%t\x00%s\x00%d", tv, naming.NormalizeKey(title), year)
	if md, ok := s.lookups[key]; ok {
		return md
	}

	search := s.p.resolver.SearchMovie
	if tv {
		search = s.p.resolver.SearchTVShow
	}
	md, err := metadata.SearchWithFallback(s.ctx, search, title, year, s.p.cfg.Metadata.MinSearchWords)
	switch {
	case err == nil:
		s.p.logger.Info("planner", "Metadata found",
			logging.F("query", title),
			logging.F("title", md.Title),
			logging.F("year", md.Year),
			logging.F("tmdb_id", md.TMDBID))
	case errors.Is(err, metadata.ErrNotFound):
		s.p.logger.Info("planner", "Metadata not found", logging.F("query", title))
		md = nil
	default:
		s.p.logger.Warn("planner", "Metadata lookup failed", logging.F("query", title), logging.F("error", err.Error()))
		md = nil
	}
	s.lookups[key] = md
	return md
}

// qualityTag returns the tag for a video's filename, probing the file when
// the name has none and probing is enabled.
func (s *session) qualityTag(path string) string {
	if !s.p.cfg.Organize.AddQualityTag {
		return ""
	}
	if tag := quality.ExtractTag(filepath.Base(path)); tag != "" {
		return tag
	}
	if !s.p.cfg.Organize.UseProbe || s.p.prober == nil {
		return ""
	}
	tag, err := s.p.prober.DetectResolution(s.ctx, path)
	if err != nil {
		s.p.logger.Debug("planner", "Quality probe failed", logging.F("path", path), logging.F("error", err.Error()))
		return ""
	}
	return tag
}
