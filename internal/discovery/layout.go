// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"path"
	"slices"
	"strings"

	"github.com/pkgtester/pkgtester/pkg/fspath"
)

var (
	// testDirCandidates are searched in order; the first existing one is used.
	testDirCandidates = []string{"tests", "Tests", "test", "Test"}

	// knownSuites are reported first, in this order, when present.
	knownSuites = []string{"Unit", "Feature", "Integration", "Functional", "Api"}

	// defaultIgnoredDirs never count as sub-suites. Compared case-insensitively.
	defaultIgnoredDirs = []string{
		"fixtures", "fixture", "stubs", "stub", "snapshots", "__snapshots__",
		"data", "resources", "support", "_support", "_output", "_data", "tmp",
	}
)

// suite is an auto-detected test location.
type suite struct {
	name string
	rel  string
}

// DefaultIgnoredDirs returns a copy of the built-in sub-suite ignore list.
func DefaultIgnoredDirs() []string {
	return slices.Clone(defaultIgnoredDirs)
}

// findTestDir returns the first conventional test directory under root.
func findTestDir(root string) (string, bool) {
	for _, candidate := range testDirCandidates {
		if fspath.IsDir(fspath.Join(root, candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// detectSuites lists the suites of a conventional layout. Known suite names
// come first in their fixed order, then every other non-ignored, non-hidden
// subdirectory in lexical order. Without any sub-suite the whole test
// directory is a single suite named "Tests".
func detectSuites(root string, ignored []string) []suite {
	testDir, ok := findTestDir(root)
	if !ok {
		return nil
	}

	subdirs := fspath.Subdirs(fspath.Join(root, testDir))

	var suites []suite
	used := make(map[string]bool, len(subdirs))
	for _, known := range knownSuites {
		for _, sub := range subdirs {
			if used[sub] || !strings.EqualFold(sub, known) {
				continue
			}
			used[sub] = true
			suites = append(suites, suite{name: sub, rel: path.Join(testDir, sub)})
			break
		}
	}
	for _, sub := range subdirs {
		if used[sub] || strings.HasPrefix(sub, ".") || isIgnoredDir(sub, ignored) {
			continue
		}
		suites = append(suites, suite{name: sub, rel: path.Join(testDir, sub)})
	}

	if len(suites) == 0 {
		return []suite{{name: wholeSuiteName, rel: testDir}}
	}
	return suites
}

func isIgnoredDir(name string, ignored []string) bool {
	for _, ig := range ignored {
		if strings.EqualFold(name, ig) {
			return true
		}
	}
	return false
}
