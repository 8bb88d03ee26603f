package subtitle

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultMinPortugueseWords is the default IsPortuguese threshold.
const DefaultMinPortugueseWords = 5

const portugueseSampleLines = 100

var portugueseWords = []string{
	"que", "não", "para", "com", "uma", "mais", "muito", "está", "você",
	"seu", "sua", "ele", "ela", "são", "mas", "por", "até", "também",
	"bem", "foi", "ser", "vai", "pode", "ainda", "onde", "quando",
	"como", "porque", "sem", "sobre", "todo", "tinha", "foram", "fazer",
}

// IsPortuguese reports whether the first lines of an .srt file contain at
// least minWords distinct common Portuguese words. Missing files and other
// extensions never pass.
func IsPortuguese(path string, minWords int) bool {
	if !strings.EqualFold(filepath.Ext(path), ".srt") {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var sample bytes.Buffer
	reader := bufio.NewReader(f)
	for i := 0; i < portugueseSampleLines; i++ {
		line, err := reader.ReadBytes('\n')
		sample.Write(line)
		sample.WriteByte(' ')
		if err != nil {
			break
		}
	}
	return PortugueseWordCount(decodeText(sample.Bytes())) >= minWords
}

// PortugueseWordCount counts how many words of the fixed list occur in text.
// Containment is substring based, matching words inside longer ones.
func PortugueseWordCount(text string) int {
	text = strings.ToLower(text)
	count := 0
	for _, w := range portugueseWords {
		if strings.Contains(text, w) {
			count++
		}
	}
	return count
}

// decodeText returns UTF-8 input unchanged and treats anything else as
// Windows-1252, the usual encoding of older Portuguese subtitles.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}
