// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"path"

	"github.com/pkgtester/pkgtester/pkg/fspath"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

// wholeSuiteName is the display name of a test directory that has no
// recognizable sub-suites.
const wholeSuiteName = "Tests"

// NamespaceResolver assigns PSR-4 namespaces to package-relative test paths
// using the package's own autoload-dev table.
type NamespaceResolver struct {
	byPath map[string]pkgmeta.Namespace
}

// NewNamespaceResolver indexes table by normalized path. When several
// namespaces list the same directory, the first declared one wins.
func NewNamespaceResolver(table pkgmeta.AutoloadMap) *NamespaceResolver {
	r := &NamespaceResolver{byPath: make(map[string]pkgmeta.Namespace)}
	for _, pair := range table.Pairs() {
		p := fspath.Normalize(pair.Paths[0])
		if _, taken := r.byPath[p]; taken {
			continue
		}
		r.byPath[p] = pair.Namespace.Trim()
	}
	return r
}

// Resolve returns the namespace declared for rel, or nil.
func (r *NamespaceResolver) Resolve(rel string) *pkgmeta.Namespace {
	ns, ok := r.byPath[fspath.Normalize(rel)]
	if !ok {
		return nil
	}
	return &ns
}

// displayName picks the label for a test entry: an explicit name, then the
// resolved namespace, then the fallback (a sub-suite name, "Tests", or the
// path's base name).
func displayName(explicit string, ns *pkgmeta.Namespace, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if ns != nil && !ns.IsEmpty() {
		return string(ns.Trim())
	}
	return fallback
}

// baseName returns the last element of a normalized relative path; the
// package root itself is labeled as a whole suite.
func baseName(rel string) string {
	if rel == "." {
		return wholeSuiteName
	}
	return path.Base(rel)
}
