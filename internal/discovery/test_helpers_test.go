// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

// testPackage describes a fixture package written under a vendor root.
type testPackage struct {
	// dir is the vendor-relative directory, e.g. "acme/widgets".
	dir string
	// composer is the composer.json content; empty skips the file.
	composer string
	// declaration is the package-tester.json content; empty skips the file.
	declaration string
	// dirs are package-relative directories to create.
	dirs []string
}

// writeTestPackage creates the package fixture and returns its absolute root.
func writeTestPackage(t *testing.T, vendorRoot string, pkg testPackage) string {
	t.Helper()
	root := filepath.Join(vendorRoot, filepath.FromSlash(pkg.dir))
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create package dir: %v", err)
	}
	if pkg.composer != "" {
		writeTestFile(t, filepath.Join(root, "composer.json"), pkg.composer)
	}
	if pkg.declaration != "" {
		writeTestFile(t, filepath.Join(root, "package-tester.json"), pkg.declaration)
	}
	for _, d := range pkg.dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}
	return root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// entryPaths returns the relative paths of entries, in order.
func entryPaths(entries []TestEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelativePath
	}
	return out
}

// entryNames returns the display names of entries, in order.
func entryNames(entries []TestEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.DisplayName
	}
	return out
}

func hasDiagnostic(diags []Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
