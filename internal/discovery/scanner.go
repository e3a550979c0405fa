// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pkgtester/pkgtester/pkg/fspath"
)

type (
	// Scanner walks a vendor directory laid out as <root>/<group>/<package>
	// and registers every package that declares tests.
	Scanner struct {
		analyzer *Analyzer
	}

	// ScanResult bundles the Registry built by a scan with the diagnostics
	// produced along the way.
	ScanResult struct {
		Registry    *Registry
		Diagnostics []Diagnostic
	}
)

// NewScanner creates a Scanner; opts configure the underlying Analyzer.
func NewScanner(opts ...Option) *Scanner {
	return &Scanner{analyzer: NewAnalyzer(opts...)}
}

// Scan builds a fresh Registry from the vendor tree at root. A missing root
// yields an empty Registry. Groups and packages are visited in lexical
// order, and for packages sharing a declared name the first one visited
// wins. Cancelling ctx stops the walk and returns what was found so far.
func (s *Scanner) Scan(ctx context.Context, root string) ScanResult {
	result := ScanResult{Registry: NewRegistry()}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		slog.Debug("failed to resolve vendor root", "root", root, "error", err)
		return result
	}

	for _, group := range fspath.Subdirs(absRoot) {
		groupDir := filepath.Join(absRoot, group)
		for _, pkg := range fspath.Subdirs(groupDir) {
			if ctx.Err() != nil {
				slog.Debug("vendor scan canceled", "root", absRoot, "error", ctx.Err())
				return result
			}
			s.scanPackage(filepath.Join(groupDir, pkg), &result)
		}
	}

	return result
}

// scanPackage analyzes one candidate directory. Both the metadata file and
// the dedicated declaration file must be present; this pre-filter is
// stricter than Analyze, which also accepts an "extra" block.
func (s *Scanner) scanPackage(dir string, result *ScanResult) {
	a := s.analyzer
	declPath := filepath.Join(dir, a.declarationFile)
	if !fspath.IsFile(filepath.Join(dir, a.metadataFile)) || !fspath.IsFile(declPath) {
		return
	}

	meta, diags := a.readMetadata(dir)
	result.Diagnostics = append(result.Diagnostics, diags...)
	if meta == nil {
		return
	}

	name := packageName(dir, meta)
	if existing, ok := result.Registry.Get(name); ok {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityInfo,
			Code:     CodeDuplicatePackage,
			Message:  fmt.Sprintf("package %s already discovered at %s, ignoring duplicate", name, existing.RootPath),
			Package:  name,
			Path:     dir,
		})
		return
	}

	decl, declDiags := a.readDeclaration(declPath, nil)
	result.Diagnostics = append(result.Diagnostics, declDiags...)
	if decl == nil {
		return
	}

	desc, descDiags := a.describe(dir, meta, decl)
	result.Diagnostics = append(result.Diagnostics, descDiags...)
	if desc == nil {
		return
	}
	if len(desc.TestEntries) == 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityInfo,
			Code:     CodeNoTestEntries,
			Message:  fmt.Sprintf("package %s resolved no test entries", name),
			Package:  name,
			Path:     dir,
		})
		return
	}

	result.Registry.Add(desc)
	slog.Debug("package discovered", "package", name, "path", dir, "entries", len(desc.TestEntries))
	result.Diagnostics = append(result.Diagnostics, Diagnostic{
		Severity: SeverityInfo,
		Code:     CodePackageDiscovered,
		Message:  fmt.Sprintf("discovered package %s (%d test entries)", name, len(desc.TestEntries)),
		Package:  name,
		Path:     dir,
	})
}
