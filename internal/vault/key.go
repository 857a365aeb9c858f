package vault

import (
	"fmt"
	"path"
	"strings"
)

// normalizeObjectKey turns key into a clean slash-separated relative key.
func normalizeObjectKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}

// validateObjectKey rejects keys that would escape a vault root.
func validateObjectKey(key string) (string, error) {
	key = normalizeObjectKey(key)
	if key == "" {
		return "", fmt.Errorf("invalid object key: empty")
	}
	if cleaned := path.Clean(key); cleaned != key || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return key, nil
}
