// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pkgtester/pkgtester/pkg/fspath"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

type (
	// Analyzer decides whether a single package opts into test discovery
	// and resolves its test entries.
	Analyzer struct {
		metadataFile    string
		declarationFile string
		ignoredDirs     []string
	}

	// Option configures an Analyzer or a Scanner.
	Option func(*Analyzer)
)

// WithMetadataFile overrides the package metadata file name (default composer.json).
func WithMetadataFile(name string) Option {
	return func(a *Analyzer) {
		if name != "" {
			a.metadataFile = name
		}
	}
}

// WithDeclarationFile overrides the test declaration file name (default package-tester.json).
func WithDeclarationFile(name string) Option {
	return func(a *Analyzer) {
		if name != "" {
			a.declarationFile = name
		}
	}
}

// WithIgnoredDirs adds directory names that never count as auto-detected sub-suites.
func WithIgnoredDirs(names ...string) Option {
	return func(a *Analyzer) {
		a.ignoredDirs = append(a.ignoredDirs, names...)
	}
}

// NewAnalyzer creates an Analyzer with the conventional file names.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		metadataFile:    pkgmeta.MetadataFileName,
		declarationFile: pkgmeta.DeclarationFileName,
		ignoredDirs:     DefaultIgnoredDirs(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze inspects the package rooted at root. It returns nil when the
// package does not qualify: metadata missing or unparseable, no test
// declaration, runner disabled, or neither test entries nor an autoload-dev
// table. A package-tester.json file takes precedence over an
// "extra.package-tester" block.
func (a *Analyzer) Analyze(root string) (*PackageDescriptor, []Diagnostic) {
	root, err := filepath.Abs(root)
	if err != nil {
		slog.Debug("failed to resolve package root", "root", root, "error", err)
		return nil, nil
	}

	meta, diags := a.readMetadata(root)
	if meta == nil {
		return nil, diags
	}

	var decl *pkgmeta.Declaration
	declPath := filepath.Join(root, a.declarationFile)
	if fspath.IsFile(declPath) {
		decl, diags = a.readDeclaration(declPath, diags)
	} else {
		extra, ok, extraErr := meta.ExtraDeclaration()
		switch {
		case extraErr != nil:
			diags = append(diags, invalidDeclarationDiagnostic(filepath.Join(root, a.metadataFile), extraErr))
		case ok:
			decl = extra
		}
	}
	if decl == nil {
		return nil, diags
	}

	desc, describeDiags := a.describe(root, meta, decl)
	return desc, append(diags, describeDiags...)
}

func (a *Analyzer) readMetadata(root string) (*pkgmeta.Metadata, []Diagnostic) {
	path := filepath.Join(root, a.metadataFile)
	meta, err := pkgmeta.ReadMetadata(path)
	if err == nil {
		return meta, nil
	}

	slog.Debug("skipping package with unreadable metadata", "path", path, "error", err)
	if errors.Is(err, pkgmeta.ErrInvalidMetadata) {
		return nil, []Diagnostic{{
			Severity: SeverityInfo,
			Code:     CodeMetadataInvalid,
			Message:  fmt.Sprintf("skipping package with invalid metadata: %v", err),
			Path:     path,
			Cause:    err,
		}}
	}
	return nil, nil
}

func (a *Analyzer) readDeclaration(path string, diags []Diagnostic) (*pkgmeta.Declaration, []Diagnostic) {
	decl, err := pkgmeta.ReadDeclaration(path)
	if err != nil {
		slog.Debug("skipping package with unreadable test declaration", "path", path, "error", err)
		if errors.Is(err, pkgmeta.ErrInvalidDeclaration) {
			diags = append(diags, invalidDeclarationDiagnostic(path, err))
		}
		return nil, diags
	}
	return decl, diags
}

func invalidDeclarationDiagnostic(path string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityInfo,
		Code:     CodeDeclarationInvalid,
		Message:  fmt.Sprintf("skipping package with invalid test declaration: %v", err),
		Path:     path,
		Cause:    err,
	}
}

// packageName returns the declared name, falling back to the directory name.
func packageName(root string, meta *pkgmeta.Metadata) string {
	if meta.Name != "" {
		return meta.Name
	}
	return filepath.Base(root)
}

// describe builds the descriptor for a package whose metadata and
// declaration are already decoded.
func (a *Analyzer) describe(root string, meta *pkgmeta.Metadata, decl *pkgmeta.Declaration) (*PackageDescriptor, []Diagnostic) {
	name := packageName(root, meta)

	if !decl.Runner.IsEnabled() {
		return nil, []Diagnostic{{
			Severity: SeverityInfo,
			Code:     CodeRunnerDisabled,
			Message:  fmt.Sprintf("package %s disables its test runner", name),
			Package:  name,
			Path:     root,
		}}
	}

	entries, diags := a.resolveEntries(root, name, meta, decl)
	if len(entries) == 0 && len(meta.AutoloadDev.PSR4) == 0 {
		return nil, diags
	}

	desc := &PackageDescriptor{
		Name:                   name,
		Version:                meta.Version,
		RootPath:               root,
		TestEntries:            entries,
		DeclaredOptions:        declaredOptions(decl),
		DependencyPackageNames: uniqueStrings(decl.DependencyPackages),
		AutoloadDev:            meta.AutoloadDev.PSR4,
		Source:                 decl.Source,
	}
	return desc, diags
}

// resolveEntries applies the first matching resolution mode: an explicit
// test list, a namespace block, the autoload-dev table (declaration file
// with a non-empty table only), or conventional layout detection.
func (a *Analyzer) resolveEntries(root, name string, meta *pkgmeta.Metadata, decl *pkgmeta.Declaration) ([]TestEntry, []Diagnostic) {
	resolver := NewNamespaceResolver(meta.AutoloadDev.PSR4)

	switch {
	case len(decl.Tests) > 0:
		return explicitEntries(root, name, decl.Tests, resolver)
	case decl.Namespace != nil:
		return primaryEntry(root, name, decl.Namespace, resolver)
	case decl.Source == pkgmeta.SourceDeclarationFile && len(meta.AutoloadDev.PSR4) > 0:
		return autoloadEntries(root, name, meta.AutoloadDev.PSR4)
	default:
		return detectedEntries(root, a.ignoredDirs, resolver), nil
	}
}

func explicitEntries(root, name string, specs []pkgmeta.TestSpec, resolver *NamespaceResolver) ([]TestEntry, []Diagnostic) {
	var (
		entries []TestEntry
		diags   []Diagnostic
	)
	for _, spec := range specs {
		if spec.Path == "" {
			continue
		}
		rel := fspath.Normalize(spec.Path)
		if !fspath.IsDir(fspath.Join(root, rel)) {
			diags = append(diags, missingPathDiagnostic(root, name, rel))
			continue
		}

		ns := resolver.Resolve(rel)
		if !spec.Namespace.IsEmpty() {
			explicit := spec.Namespace.Trim()
			ns = &explicit
		}
		entries = append(entries, TestEntry{
			DisplayName:  displayName(spec.Name, ns, baseName(rel)),
			RelativePath: rel,
			Namespace:    ns,
			Options:      []string(spec.Options),
			Filter:       spec.Filter,
		})
	}
	return entries, diags
}

func primaryEntry(root, name string, block *pkgmeta.NamespaceBlock, resolver *NamespaceResolver) ([]TestEntry, []Diagnostic) {
	rel := fspath.Normalize(block.PrimaryPath())
	if !fspath.IsDir(fspath.Join(root, rel)) {
		return nil, []Diagnostic{missingPathDiagnostic(root, name, rel)}
	}

	ns := resolver.Resolve(rel)
	if !block.Namespace.IsEmpty() {
		explicit := block.Namespace.Trim()
		ns = &explicit
	}
	return []TestEntry{{
		DisplayName:  displayName("", ns, wholeSuiteName),
		RelativePath: rel,
		Namespace:    ns,
		Options:      []string(block.Option),
		Filter:       block.Filter,
	}}, nil
}

// autoloadEntries turns every existing autoload-dev path into a test entry.
// A directory listed under several namespaces is reported once, under the
// first namespace.
func autoloadEntries(root, name string, table pkgmeta.AutoloadMap) ([]TestEntry, []Diagnostic) {
	var (
		entries []TestEntry
		diags   []Diagnostic
	)
	seen := make(map[string]bool)
	for _, pair := range table.Pairs() {
		rel := fspath.Normalize(pair.Paths[0])
		if seen[rel] {
			continue
		}
		seen[rel] = true

		if !fspath.IsDir(fspath.Join(root, rel)) {
			diags = append(diags, missingPathDiagnostic(root, name, rel))
			continue
		}

		ns := pair.Namespace.Trim()
		entries = append(entries, TestEntry{
			DisplayName:  displayName("", &ns, baseName(rel)),
			RelativePath: rel,
			Namespace:    &ns,
		})
	}
	return entries, diags
}

func detectedEntries(root string, ignored []string, resolver *NamespaceResolver) []TestEntry {
	suites := detectSuites(root, ignored)
	entries := make([]TestEntry, 0, len(suites))
	for _, s := range suites {
		ns := resolver.Resolve(s.rel)
		entries = append(entries, TestEntry{
			DisplayName:  displayName("", ns, s.name),
			RelativePath: s.rel,
			Namespace:    ns,
		})
	}
	return entries
}

func missingPathDiagnostic(root, name, rel string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeTestPathMissing,
		Message:  fmt.Sprintf("package %s declares test path %q which is not a directory", name, rel),
		Package:  name,
		Path:     fspath.Join(root, rel),
	}
}

func declaredOptions(decl *pkgmeta.Declaration) map[string][]string {
	if len(decl.Options) == 0 {
		return nil
	}
	out := make(map[string][]string, len(decl.Options))
	for key, values := range decl.Options {
		out[key] = []string(values)
	}
	return out
}

func uniqueStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
