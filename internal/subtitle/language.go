package subtitle

import (
	"sort"
	"strings"
)

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2/B, the canonical form written to file names
	alt     []string // ISO 639-2/T and regional spellings
	display string
}

var languages = []entry{
	{"ar", "ara", nil, "Arabic"},
	{"eu", "baq", []string{"eus"}, "Basque"},
	{"bg", "bul", nil, "Bulgarian"},
	{"ca", "cat", nil, "Catalan"},
	{"zh", "chi", []string{"zho", "zh-cn", "zh-tw", "chs", "cht"}, "Chinese"},
	{"cs", "cze", []string{"ces"}, "Czech"},
	{"da", "dan", nil, "Danish"},
	{"nl", "dut", []string{"nld"}, "Dutch"},
	{"en", "eng", []string{"en-us", "en-gb"}, "English"},
	{"tl", "fil", []string{"tgl"}, "Filipino"},
	{"fi", "fin", nil, "Finnish"},
	{"fr", "fre", []string{"fra", "fr-fr", "fr-ca"}, "French"},
	{"de", "ger", []string{"deu", "de-de"}, "German"},
	{"gl", "glg", nil, "Galician"},
	{"el", "gre", []string{"ell"}, "Greek"},
	{"he", "heb", []string{"iw"}, "Hebrew"},
	{"hi", "hin", nil, "Hindi"},
	{"hr", "hrv", nil, "Croatian"},
	{"hu", "hun", nil, "Hungarian"},
	{"id", "ind", nil, "Indonesian"},
	{"it", "ita", nil, "Italian"},
	{"ja", "jpn", nil, "Japanese"},
	{"ko", "kor", nil, "Korean"},
	{"lv", "lav", nil, "Latvian"},
	{"lt", "lit", nil, "Lithuanian"},
	{"ms", "may", []string{"msa"}, "Malay"},
	{"nb", "nob", nil, "Norwegian Bokmål"},
	{"no", "nor", nil, "Norwegian"},
	{"pl", "pol", nil, "Polish"},
	{"pt", "por", []string{"pob", "pb", "pt-br", "pt_br", "pt-pt", "ptbr", "br"}, "Portuguese"},
	{"ro", "rum", []string{"ron"}, "Romanian"},
	{"ru", "rus", nil, "Russian"},
	{"sk", "slo", []string{"slk"}, "Slovak"},
	{"sl", "slv", nil, "Slovenian"},
	{"es", "spa", []string{"es-es", "es-mx", "es-la"}, "Spanish"},
	{"sv", "swe", nil, "Swedish"},
	{"ta", "tam", nil, "Tamil"},
	{"te", "tel", nil, "Telugu"},
	{"th", "tha", nil, "Thai"},
	{"tr", "tur", nil, "Turkish"},
	{"uk", "ukr", nil, "Ukrainian"},
	{"vi", "vie", nil, "Vietnamese"},
}

var byCode map[string]*entry

func init() {
	byCode = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode[e.code2] = e
		byCode[e.code3] = e
		for _, a := range e.alt {
			byCode[a] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode[code]; ok {
		return e
	}
	// "en-AU" style regions fall back to the base language
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return byCode[code[:i]]
	}
	return nil
}

// Canonical returns the canonical 3-letter code for any recognized spelling
// ("pt", "pt-BR", "pob", "por" all give "por"). ok is false for unknown codes.
func Canonical(code string) (string, bool) {
	e := lookup(code)
	if e == nil {
		return "", false
	}
	return e.code3, true
}

// DisplayName returns a human-readable language name, or the code itself.
func DisplayName(code string) string {
	if e := lookup(code); e != nil {
		return e.display
	}
	return code
}

// CanonicalSet canonicalizes a keep-list. Unknown codes are kept verbatim so
// they still match files carrying the same literal tag.
func CanonicalSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if canon, ok := Canonical(c); ok {
			set[canon] = true
			continue
		}
		set[strings.ToLower(c)] = true
	}
	return set
}

// LanguageCount summarizes the subtitles of one language.
type LanguageCount struct {
	Lang     string // canonical code, empty for untagged files
	Name     string
	Files    int
	Forced   int
	Variants int
}

// CountLanguages groups subtitle files by language, most common first.
// Untagged files are grouped under an empty Lang.
func CountLanguages(files []string) []LanguageCount {
	idx := make(map[string]int)
	var counts []LanguageCount
	for _, f := range files {
		lang := ParseName(f).Lang
		i, ok := idx[lang]
		if !ok {
			name := "untagged"
			if lang != "" {
				name = DisplayName(lang)
			}
			i = len(counts)
			idx[lang] = i
			counts = append(counts, LanguageCount{Lang: lang, Name: name})
		}
		counts[i].Files++
		if IsForcedName(f) {
			counts[i].Forced++
		}
		if IsVariant(f) {
			counts[i].Variants++
		}
	}
	sort.SliceStable(counts, func(a, b int) bool {
		if counts[a].Files != counts[b].Files {
			return counts[a].Files > counts[b].Files
		}
		return counts[a].Name < counts[b].Name
	})
	return counts
}
