package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRegex        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	forbiddenRegex   = regexp.MustCompile(`[<>"/\\|?*]`)
	spaceRegex       = regexp.MustCompile(`\s+`)
	groupSuffixRegex = regexp.MustCompile(`(?i)\b(x264|x265|HEVC|H\.?264|H\.?265|AVC|XviD|BluRay|WEB-?DL|WEBRip|HDTV|DVDRip|BDRip|AAC|AC3|DTS|\d{3,4}p|10bit)-[A-Za-z0-9]+$`)
	bracketRegex     = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}`)
	parenRegex       = regexp.MustCompile(`\([^)]*\)`)
	providerRegex    = regexp.MustCompile(`^\[(tmdbid|imdbid|tvdbid)-[A-Za-z0-9]+\]$`)
	folderRegex      = regexp.MustCompile(`^(.+?)(?: \(((?:19|20)\d{2})\))?((?: \[(?:tmdbid|imdbid|tvdbid)-[A-Za-z0-9]+\])*)$`)
	releasePatterns  []*regexp.Regexp
)

func init() {
	patterns := []string{
		`\b(AAC|AC3|DDP?|DD\+|DTS|EAC3|TrueHD|FLAC|Atmos)\s?[257]\s[01]\b`,
		`\b\d{3,4}[pi]\b`,
		`\b\d{3,4}x\d{3,4}\b`,
		`\b(4K|8K|UHD|FHD)\b`,
		`\b(HDR10\+?|HDR|DoVi)\b`,
		`\b(DTS-HD|DTS-X|DTS|TrueHD|Atmos|AAC|AC3|E-?AC-?3|DDP?\d?|FLAC|MP3)\b`,
		`\b(BluRay|Blu-ray|BDRip|BRRip|REMUX|WEB-DL|WEBDL|WEBRip|HDTV|DVDRip|DVD-Rip|CAMRip)\b`,
		`\b(AMZN|NF|ATVP|HMAX|DSNP|HULU)\b`,
		`\b(x264|x265|HEVC|AVC|XviD|DivX|H\s?264|H\s?265)\b`,
		`\b(PROPER|REPACK|iNTERNAL|LIMITED|EXTENDED|UNRATED|REMASTERED|IMAX)\b`,
		`\b(Dual\s?Audio|DUAL|MULTI)\b`,
		`\b(RARBG|YTS|YIFY|ETRG|EVO|GalaxyRG|MkvCage)\b`,
		`\b(8bit|10bit|12bit)\b`,
	}

	releasePatterns = make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		releasePatterns = append(releasePatterns, regexp.MustCompile(`(?i)`+pattern))
	}
}

// CleanTitle normalizes a raw filename stem (or folder name) into a display
// title and the release year it carries (0 when none). Everything after the
// year is discarded, technical tags are stripped and forbidden characters are
// removed. CleanTitle is idempotent on its own output: formatting the result
// with FolderName and cleaning it again yields the same title and year.
func CleanTitle(raw string) (string, int) {
	s := separatorsToSpaces(raw)
	s = groupSuffixRegex.ReplaceAllString(s, " ")

	year, pos := lastYear(s)
	if year != 0 {
		if cut := trimTitle(s[:pos]); cut != "" {
			s = cut
		} else {
			year = 0
		}
	}

	s = stripReleaseMarkers(s)
	s = trimTitle(s)
	if s == "" {
		s = trimTitle(Sanitize(raw))
	}
	return s, year
}

// ExtractYear returns the last plausible release year in s, or 0.
// A year at the very start of s is treated as part of the title ("1917").
func ExtractYear(s string) int {
	year, _ := lastYear(separatorsToSpaces(s))
	return year
}

func lastYear(s string) (int, int) {
	locs := yearRegex.FindAllStringIndex(s, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		start, end := locs[i][0], locs[i][1]
		if start == 0 {
			continue
		}
		// 1920x1080 style resolutions
		if end < len(s) && (s[end] == 'x' || s[end] == 'X') {
			continue
		}
		if start > 0 && (s[start-1] == 'x' || s[start-1] == 'X') {
			continue
		}
		year, err := strconv.Atoi(s[start:end])
		if err != nil {
			continue
		}
		return year, start
	}
	return 0, 0
}

func separatorsToSpaces(s string) string {
	s = strings.ReplaceAll(s, ".", " ")
	return strings.ReplaceAll(s, "_", " ")
}

func stripReleaseMarkers(s string) string {
	s = bracketRegex.ReplaceAllString(s, " ")
	s = parenRegex.ReplaceAllString(s, " ")
	for _, re := range releasePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

func trimTitle(s string) string {
	s = Sanitize(s)
	s = spaceRegex.ReplaceAllString(s, " ")
	s = strings.Trim(s, " -.([_,")
	s = strings.TrimSuffix(s, " -")
	return strings.TrimSpace(s)
}

// Sanitize removes characters Jellyfin cannot use in file names.
func Sanitize(name string) string {
	cleaned := forbiddenRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(cleaned, " "))
}

// FolderName returns "{title} ({year})" or just the title when year is 0.
func FolderName(title string, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}

// ProviderSuffix returns the Jellyfin provider-id suffix for a folder name.
// TMDB wins over IMDb, which wins over TVDB. Empty when no id is known.
func ProviderSuffix(tmdbID int, imdbID string, tvdbID int) string {
	switch {
	case tmdbID > 0:
		return fmt.Sprintf(" [tmdbid-%d]", tmdbID)
	case imdbID != "":
		return fmt.Sprintf(" [imdbid-%s]", imdbID)
	case tvdbID > 0:
		return fmt.Sprintf(" [tvdbid-%d]", tvdbID)
	}
	return ""
}

// MatchesFolder reports whether an existing folder name is an acceptable
// rendering of title/year: the exact folder name, optionally followed by a
// provider-id suffix.
func MatchesFolder(folder, title string, year int) bool {
	base := FolderName(title, year)
	if folder == base {
		return true
	}
	rest, ok := strings.CutPrefix(folder, base+" ")
	if !ok {
		return false
	}
	return providerRegex.MatchString(rest)
}

// ParseFolder splits a Jellyfin folder name "Title (2000) [tmdbid-1]" into
// its display title, year (0 when absent) and provider suffix (with its
// leading space). The title is returned as written.
func ParseFolder(name string) (string, int, string) {
	m := folderRegex.FindStringSubmatch(name)
	if m == nil {
		return name, 0, ""
	}
	year := 0
	if m[2] != "" {
		year, _ = strconv.Atoi(m[2])
	}
	return m[1], year, m[3]
}

// SeasonFolder formats a season directory name.
func SeasonFolder(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// EpisodeTag formats "S01E05" or "S01E05-E06" for multi-episode files.
func EpisodeTag(season, start, end int) string {
	if end > start {
		return fmt.Sprintf("S%02dE%02d-E%02d", season, start, end)
	}
	return fmt.Sprintf("S%02dE%02d", season, start)
}

// WithQuality appends " - {quality}" to a base name when quality is set.
func WithQuality(base, quality string) string {
	if quality == "" {
		return base
	}
	return base + " - " + quality
}
