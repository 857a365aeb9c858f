package fs

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns are always applied regardless of config: Finder
// metadata and temp files left behind by an interrupted atomic write.
var DefaultIgnorePatterns = []string{".DS_Store", ".tmp-*"}

// IgnoreMatcher checks file names against a set of glob patterns.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the base name of path matches any pattern.
func (m *IgnoreMatcher) Match(path string) bool {
	basename := filepath.Base(path)
	for _, p := range m.patterns {
		matched, err := filepath.Match(p, basename)
		if err != nil {
			// Bad pattern — skip rather than crash.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
