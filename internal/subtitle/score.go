package subtitle

import (
	"bytes"
	"os"
)

const (
	minScoredSize = 100
	smallFileSize = 1024
)

// Score rates a subtitle file for variant selection. Larger files with more
// numbered blocks and text lines score higher. Files under 100 bytes, and
// files that cannot be read, score 0 and are never selected.
func Score(path string) float64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() < minScoredSize {
		return 0
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return ScoreContent(data, info.Size())
}

// ScoreContent scores raw subtitle bytes of the given on-disk size.
func ScoreContent(data []byte, size int64) float64 {
	if size < minScoredSize {
		return 0
	}

	var blocks, textLines int
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case isAllDigits(line):
			blocks++
		case !bytes.Contains(line, []byte("-->")):
			textLines++
		}
	}

	sizeScore := float64(size) / 1024
	if size < smallFileSize {
		sizeScore *= 0.1
	}
	return sizeScore + float64(blocks)*10 + float64(textLines)*2
}

func isAllDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(b) > 0
}
