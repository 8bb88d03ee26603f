package media

import (
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
	".webm": true, ".m4v": true, ".mpg": true, ".mpeg": true, ".3gp": true, ".ogv": true,
}

var subtitleExtensions = map[string]bool{
	".srt": true, ".ass": true, ".ssa": true, ".sub": true, ".vtt": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".webp": true, ".tiff": true, ".ico": true, ".svg": true,
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsVideo reports whether path has a known video extension.
func IsVideo(path string) bool { return videoExtensions[ext(path)] }

// IsSubtitle reports whether path has a known subtitle extension.
func IsSubtitle(path string) bool { return subtitleExtensions[ext(path)] }

// IsImage reports whether path has a known image extension.
func IsImage(path string) bool { return imageExtensions[ext(path)] }

// IsNFO reports whether path is a Kodi/Jellyfin .nfo file.
func IsNFO(path string) bool { return ext(path) == ".nfo" }

// IsHidden reports whether the base name starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Stem returns the base name without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
