package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

const globCharacters = "*?["

// IsGlobPattern returns whether the pattern contains a glob pattern.
func IsGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, globCharacters)
}

// EscapeGlob escapes every character of s that has a meaning in a glob pattern so s only matches
// itself.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Glob lists the entries of the directory of pattern whose names match the final element of
// pattern. Only the final element may contain glob characters. A missing directory matches
// nothing.
func Glob(p Provider, pattern string) ([]string, error) {
	dir, namePattern := filepath.Split(pattern)
	dir = filepath.Clean(dir)
	if IsGlobPattern(dir) {
		return nil, fmt.Errorf("unable to glob %q: only the last path element may contain a pattern", pattern)
	}
	if !doublestar.ValidatePattern(namePattern) {
		return nil, fmt.Errorf("unable to glob %q: %w", pattern, doublestar.ErrBadPattern)
	}

	entries, err := p.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read directory %q: %w", dir, err)
	}

	matches := []string{}
	for _, entry := range entries {
		// Already validated so the only possible error is ErrBadPattern.
		if match, _ := doublestar.Match(namePattern, entry.Name()); match {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	return matches, nil
}
