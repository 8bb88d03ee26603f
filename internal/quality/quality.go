// Package quality derives the resolution tag appended to organized video
// names ("The Matrix (1999) - 1080p.mkv"). Tags come from the filename and,
// optionally, from probing the video stream with ffprobe.
package quality

import (
	"context"
	"regexp"
)

// Resolution represents video resolution.
type Resolution int

const (
	ResolutionUnknown Resolution = 0
	Resolution480p    Resolution = 480
	Resolution720p    Resolution = 720
	Resolution1080p   Resolution = 1080
	Resolution2160p   Resolution = 2160 // 4K
	Resolution4320p   Resolution = 4320 // 8K
)

// Tag returns the filename tag for the resolution, or "" when unknown.
func (r Resolution) Tag() string {
	switch r {
	case Resolution480p:
		return "480p"
	case Resolution720p:
		return "720p"
	case Resolution1080p:
		return "1080p"
	case Resolution2160p:
		return "2160p"
	case Resolution4320p:
		return "8K"
	default:
		return ""
	}
}

// FromHeight maps a video stream height to a resolution bucket.
func FromHeight(height int) Resolution {
	switch {
	case height >= 2160:
		return Resolution2160p
	case height >= 1080:
		return Resolution1080p
	case height >= 720:
		return Resolution720p
	case height >= 480:
		return Resolution480p
	default:
		return ResolutionUnknown
	}
}

// Resolution tokens may be wrapped in brackets or joined with dots,
// underscores or dashes, so \b is not enough on its own.
const (
	tokenStart = `(?i)(?:^|[\s._\-\[\(])`
	tokenEnd   = `(?:[\s._\-\]\)]|$)`
)

var tagPatterns = []struct {
	re  *regexp.Regexp
	res Resolution
}{
	{regexp.MustCompile(tokenStart + `(2160p|4K|UHD)` + tokenEnd), Resolution2160p},
	{regexp.MustCompile(tokenStart + `(1080[pi])` + tokenEnd), Resolution1080p},
	{regexp.MustCompile(tokenStart + `(720p)` + tokenEnd), Resolution720p},
	{regexp.MustCompile(tokenStart + `(480p)` + tokenEnd), Resolution480p},
	{regexp.MustCompile(tokenStart + `(4320p|8K)` + tokenEnd), Resolution4320p},
}

// ParseResolution finds the first resolution token in name, checked from
// 2160p down to 480p and then 8K.
func ParseResolution(name string) Resolution {
	for _, p := range tagPatterns {
		if p.re.MatchString(name) {
			return p.res
		}
	}
	return ResolutionUnknown
}

// ExtractTag returns the quality tag carried by name, or "".
func ExtractTag(name string) string {
	return ParseResolution(name).Tag()
}

// Prober inspects a video file to determine its resolution.
type Prober interface {
	DetectResolution(ctx context.Context, path string) (string, error)
}
