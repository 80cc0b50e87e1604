package utils

import (
	"path/filepath"
	"strings"
)

// BaseNameWithoutExt returns the file name of a path without its extension.
func BaseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Slugify turns a book title into a filesystem-safe directory name:
// lowercased, spaces mapped to underscores, anything outside
// [a-z0-9_-] dropped.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '\t':
			return '_'
		}
		return -1
	}, s)
	if s == "" {
		return "book"
	}
	return s
}
