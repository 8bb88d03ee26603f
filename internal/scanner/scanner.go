package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/subtitle"
)

// MinSubtitleSize is the size below which subtitle files are ignored entirely.
// A valid SRT needs at least an index, a timestamp and one line of text.
const MinSubtitleSize = 20

// Artwork names Jellyfin recognizes; other images are unwanted.
var jellyfinImages = []string{
	"poster", "fanart", "backdrop", "logo", "banner",
	"thumb", "clearart", "clearlogo", "landscape", "disc", "folder", "cover",
}

// ScanResult is an immutable snapshot of a library tree.
//
// Every non-hidden file lands in exactly one of VideoFiles, SubtitleFiles,
// ImageFiles, NFOFiles and OtherFiles. The subtitle and image sub-buckets
// overlap those top-level lists.
type ScanResult struct {
	Root string `json:"root"`

	VideoFiles    []string `json:"video_files"`
	SubtitleFiles []string `json:"subtitle_files"`
	ImageFiles    []string `json:"image_files"`
	NFOFiles      []string `json:"nfo_files"`
	OtherFiles    []string `json:"other_files"`

	VariantSubtitles []string `json:"variant_subtitles"`
	NoLangSubtitles  []string `json:"no_lang_subtitles"`
	ForeignSubtitles []string `json:"foreign_subtitles"`
	KeptSubtitles    []string `json:"kept_subtitles"`
	UnwantedImages   []string `json:"unwanted_images"`
	NonMediaFiles    []string `json:"non_media_files"`

	TotalFiles    int `json:"total_files"`
	TotalMovies   int `json:"total_movies"`
	TotalEpisodes int `json:"total_episodes"`
}

// Recount recomputes TotalFiles from the top-level buckets.
func (r *ScanResult) Recount() {
	r.TotalFiles = len(r.VideoFiles) + len(r.SubtitleFiles) + len(r.ImageFiles) +
		len(r.NFOFiles) + len(r.OtherFiles)
}

// Scanner walks a library and classifies every file.
type Scanner struct {
	cfg    *config.Config
	logger *logging.Logger
	kept   map[string]bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Scanner reading its policy from cfg.
func New(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{
		cfg:    cfg,
		logger: logging.Nop(),
		kept:   subtitle.CanonicalSet(cfg.Subtitles.KeptLanguages),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root recursively. A missing or non-directory root yields an
// empty result. The only error returned is ctx's.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	result := &ScanResult{Root: root}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return result, nil
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("scanner", "Skipping unreadable path", logging.F("path", path), logging.F("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if media.IsHidden(path) && !s.cfg.Cleanup.HiddenAsNonMedia {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		s.classify(root, path, result)
		return nil
	})
	if walkErr != nil {
		return result, walkErr
	}

	result.Recount()
	s.logger.Debug("scanner", "Scan complete",
		logging.F("root", root),
		logging.F("files", result.TotalFiles),
		logging.F("movies", result.TotalMovies),
		logging.F("episodes", result.TotalEpisodes))
	return result, nil
}

func (s *Scanner) classify(root, path string, result *ScanResult) {
	if inHidden(root, path) {
		if s.cfg.Cleanup.HiddenAsNonMedia {
			result.NonMediaFiles = append(result.NonMediaFiles, path)
		}
		return
	}

	switch {
	case media.IsVideo(path):
		result.VideoFiles = append(result.VideoFiles, path)
		switch media.Detect(path).Type {
		case media.Movie:
			result.TotalMovies++
		case media.TVShow:
			result.TotalEpisodes++
		}

	case media.IsSubtitle(path):
		info, err := os.Stat(path)
		if err != nil || info.Size() < MinSubtitleSize {
			s.logger.Debug("scanner", "Ignoring empty subtitle", logging.F("path", path))
			return
		}
		result.SubtitleFiles = append(result.SubtitleFiles, path)
		s.classifySubtitle(path, result)

	case media.IsImage(path):
		result.ImageFiles = append(result.ImageFiles, path)
		if !isJellyfinImage(path) {
			result.UnwantedImages = append(result.UnwantedImages, path)
			if s.cfg.Cleanup.RemoveNonMedia {
				result.NonMediaFiles = append(result.NonMediaFiles, path)
			}
		}

	case media.IsNFO(path):
		result.NFOFiles = append(result.NFOFiles, path)

	default:
		result.OtherFiles = append(result.OtherFiles, path)
		if s.cfg.Cleanup.RemoveNonMedia {
			result.NonMediaFiles = append(result.NonMediaFiles, path)
		}
	}
}

func (s *Scanner) classifySubtitle(path string, result *ScanResult) {
	if _, ok := subtitle.ParseMirabel(path); ok {
		if s.kept["por"] {
			result.KeptSubtitles = append(result.KeptSubtitles, path)
		} else {
			result.ForeignSubtitles = append(result.ForeignSubtitles, path)
		}
		return
	}

	name := subtitle.ParseName(path)
	switch {
	case name.HasVariant:
		result.VariantSubtitles = append(result.VariantSubtitles, path)
	case name.Lang != "":
		if s.kept[name.Lang] || name.Forced() {
			result.KeptSubtitles = append(result.KeptSubtitles, path)
		} else {
			result.ForeignSubtitles = append(result.ForeignSubtitles, path)
		}
	case subtitle.IsPortuguese(path, s.cfg.Subtitles.MinPortugueseWords):
		result.NoLangSubtitles = append(result.NoLangSubtitles, path)
	case name.Forced():
		result.KeptSubtitles = append(result.KeptSubtitles, path)
	default:
		result.ForeignSubtitles = append(result.ForeignSubtitles, path)
	}
}

func isJellyfinImage(path string) bool {
	stem := strings.ToLower(media.Stem(path))
	for _, name := range jellyfinImages {
		if strings.Contains(stem, name) {
			return true
		}
	}
	return false
}

// inHidden reports whether path or any directory between root and path is hidden.
func inHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return media.IsHidden(path)
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
