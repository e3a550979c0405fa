// SPDX-License-Identifier: MPL-2.0

// Package fspath provides the small set of path helpers shared by discovery
// and merging. Package-relative paths coming from metadata files are always
// handled in slash form; absolute paths are handled in OS form.
package fspath

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Join joins a base directory with a package-relative path that may use
// forward slashes regardless of the host OS.
func Join(base string, rel ...string) string {
	parts := make([]string, 1, 1+len(rel))
	parts[0] = base
	for _, r := range rel {
		parts = append(parts, filepath.FromSlash(r))
	}
	return filepath.Join(parts...)
}

// Normalize converts a package-relative path to its canonical slash form:
// backslashes become slashes, a leading "./" and trailing separators are
// removed and redundant elements are cleaned. The package root itself
// (empty string, ".", "./") normalizes to ".".
func Normalize(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "."
	}
	return path.Clean(p)
}

// IsDir reports whether p exists and is a directory. Any stat failure
// (missing, permission denied, racing removal) reports false.
func IsDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// IsFile reports whether p exists and is a regular (non-directory) file.
func IsFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// RelUnder returns target relative to base, in slash form, when target lies
// at or below base. The second result is false for paths outside base
// (including other volumes), in which case callers keep the absolute path.
func RelUnder(base, target string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Subdirs lists the names of the immediate subdirectories of dir in lexical
// order. Symlinks pointing at directories count as subdirectories. An
// unreadable or missing dir yields nil.
func Subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			names = append(names, entry.Name())
		case entry.Type()&os.ModeSymlink != 0 && IsDir(filepath.Join(dir, entry.Name())):
			names = append(names, entry.Name())
		}
	}
	return names
}
