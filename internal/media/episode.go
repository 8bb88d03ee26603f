package media

import (
	"regexp"
	"strconv"
)

// Episode is a parsed season/episode span. End equals Start for single episodes.
type Episode struct {
	Season int
	Start  int
	End    int
}

var (
	seRegex      = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(s(\d{1,2})e(\d{1,2})(?:-?e(\d{1,2}))?)(?:\D|$)`)
	xRegex       = regexp.MustCompile(`\b(\d{1,2})x(\d{1,2})\b`)
	labeledRegex = regexp.MustCompile(`(?i)\b(?:Book|Volume|Vol|Part|Season|Temporada|Temp|Cap|Ep)\.?\s*(\d{1,2})\s*[-\s]+(?:Episode|Episodio|Ep\.?|E)?\s*(\d{1,2})`)
	tempRegex    = regexp.MustCompile(`(?i)\bT(?:emp)?\.?\s*(\d{1,2})\s*Ep?\.?\s*(\d{1,2})`)
)

// ExtractSeasonEpisode parses a season/episode marker out of a filename stem.
// Only explicit markers are recognized, so "Movie 2018" never parses as S20E18.
func ExtractSeasonEpisode(name string) (Episode, bool) {
	ep, _, ok := matchEpisode(name)
	return ep, ok
}

// matchEpisode also returns the byte offset where the marker starts.
func matchEpisode(name string) (Episode, int, bool) {
	// group 1 is the marker itself, without the boundary characters
	if m := seRegex.FindStringSubmatchIndex(name); m != nil {
		ep := Episode{Season: atoi(name[m[4]:m[5]]), Start: atoi(name[m[6]:m[7]])}
		ep.End = ep.Start
		if m[8] >= 0 {
			ep.End = atoi(name[m[8]:m[9]])
		}
		if ep.End < ep.Start {
			ep.End = ep.Start
		}
		return ep, m[2], true
	}

	if m := xRegex.FindStringSubmatchIndex(name); m != nil {
		season, episode := name[m[2]:m[3]], name[m[4]:m[5]]
		if !looksLikeYear(season + episode) {
			ep := Episode{Season: atoi(season), Start: atoi(episode)}
			ep.End = ep.Start
			return ep, m[0], true
		}
	}

	for _, re := range []*regexp.Regexp{labeledRegex, tempRegex} {
		for _, m := range re.FindAllStringSubmatchIndex(name, -1) {
			if digitAdjacent(name, m[0], m[1]) {
				continue
			}
			ep := Episode{Season: atoi(name[m[2]:m[3]]), Start: atoi(name[m[4]:m[5]])}
			ep.End = ep.Start
			return ep, m[0], true
		}
	}

	return Episode{}, 0, false
}

func looksLikeYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	year := atoi(s)
	return year >= 1900 && year <= 2099
}

func digitAdjacent(s string, start, end int) bool {
	if start > 0 && isDigit(s[start-1]) {
		return true
	}
	return end < len(s) && isDigit(s[end])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
