package subtitle

import (
	"path/filepath"
	"regexp"
)

// Legacy subtitles written by the Mirabel tool carry a Brazilian tag plus a
// hearing-impaired marker: "Movie.pt-BR.hi.srt", "Movie.br.hi.forced.srt".
var mirabelRegex = regexp.MustCompile(`(?i)^(.+?)\.(pt-br|pt_br|br)\.hi(\.forced)?\.srt$`)

// Mirabel is a matched legacy subtitle name.
type Mirabel struct {
	Base   string
	Forced bool
}

// ParseMirabel matches filename against the legacy pattern.
func ParseMirabel(filename string) (Mirabel, bool) {
	m := mirabelRegex.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return Mirabel{}, false
	}
	return Mirabel{Base: m[1], Forced: m[3] != ""}, true
}

// TargetName returns the standard name for a Mirabel file whose video stem is
// base: "{base}.por.srt" or "{base}.por.forced.srt".
func (m Mirabel) TargetName(base string) string {
	if m.Forced {
		return base + ".por.forced.srt"
	}
	return base + ".por.srt"
}
