package subtitle

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Name is a parsed subtitle file name.
type Name struct {
	// Base is the name with language, variant, flags and extension removed.
	// It is the join key against video stems.
	Base string
	// Lang is the canonical code, empty when the name carries none.
	Lang string
	// RawLang is the code as written ("pt-BR", "en").
	RawLang string
	// Variant is the numbered-variant digit (".por2" gives 2), 0 when absent.
	Variant    int
	HasVariant bool
	// Flags holds forced/sdh/default/cc markers in file order, lower-cased.
	Flags []string
	Ext   string
}

var langTokenRegex = regexp.MustCompile(`(?i)^([a-z]{2,3}(?:[-_][a-z]{2})?)(\d)?$`)

var knownFlags = map[string]bool{
	"forced":  true,
	"sdh":     true,
	"default": true,
	"cc":      true,
}

// ParseName splits a subtitle file name into its parts. Only recognized
// language codes count as a language; "The.Great.Flood.srt" has none.
func ParseName(filename string) Name {
	base := filepath.Base(filename)
	n := Name{Ext: filepath.Ext(base)}
	parts := strings.Split(strings.TrimSuffix(base, n.Ext), ".")

	for len(parts) > 1 && knownFlags[strings.ToLower(parts[len(parts)-1])] {
		n.Flags = append([]string{strings.ToLower(parts[len(parts)-1])}, n.Flags...)
		parts = parts[:len(parts)-1]
	}

	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if m := langTokenRegex.FindStringSubmatch(last); m != nil {
			if canon, ok := Canonical(m[1]); ok {
				n.Lang = canon
				n.RawLang = m[1]
				if m[2] != "" {
					n.Variant, _ = strconv.Atoi(m[2])
					n.HasVariant = true
				}
				parts = parts[:len(parts)-1]
			}
		}
	}

	n.Base = strings.Join(parts, ".")
	return n
}

// Forced reports whether the name carries the .forced flag.
func (n Name) Forced() bool {
	return n.HasFlag("forced")
}

// HasFlag reports whether flag is present.
func (n Name) HasFlag(flag string) bool {
	for _, f := range n.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// FlagSuffix renders the flags as ".sdh.forced" (empty when none).
func (n Name) FlagSuffix() string {
	if len(n.Flags) == 0 {
		return ""
	}
	return "." + strings.Join(n.Flags, ".")
}

// Render builds "{base}.{lang}{flags}{ext}". lang may be empty.
func Render(base, lang, flagSuffix, ext string) string {
	if lang == "" {
		return base + flagSuffix + ext
	}
	return base + "." + lang + flagSuffix + ext
}

// IsVariant reports whether filename is a numbered-language variant
// (".por2.srt", ".eng3.forced.srt").
func IsVariant(filename string) bool {
	return ParseName(filename).HasVariant
}

// IsForcedName reports whether ".forced." appears in the file name as a flag.
func IsForcedName(filename string) bool {
	return ParseName(filename).Forced()
}
