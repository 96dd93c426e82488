package util

import (
	"os"
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// FirstExisting returns the first path that exists on disk.
func FirstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// NormalizeText trims surrounding whitespace and upper-cases s.
func NormalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
