// Package postdate parses the date prefix Jekyll requires on post filenames.
package postdate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidPostName indicates a post filename without a usable date prefix.
var ErrInvalidPostName = errors.New("invalid post name")

// Layout is the Jekyll post date prefix layout (YYYY-MM-DD).
const Layout = "2006-01-02"

// prefixLen is the length of "YYYY-MM-DD".
const prefixLen = len(Layout)

// Split extracts the date prefix and slug from a Jekyll post filename.
// The name may carry any extension; "2024-03-01-first-post.md" yields
// the date 2024-03-01 and the slug "first-post". The date must be a real
// calendar date, so "2024-13-40-x.md" is rejected.
func Split(name string) (time.Time, string, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if len(base) <= prefixLen || base[prefixLen] != '-' {
		return time.Time{}, "", fmt.Errorf("%w: %q lacks a YYYY-MM-DD- prefix", ErrInvalidPostName, name)
	}

	date, err := time.Parse(Layout, base[:prefixLen])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q has a malformed date: %v", ErrInvalidPostName, name, err)
	}

	slug := base[prefixLen+1:]
	if slug == "" {
		return time.Time{}, "", fmt.Errorf("%w: %q has an empty slug", ErrInvalidPostName, name)
	}

	return date, slug, nil
}
