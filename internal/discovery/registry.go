// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"iter"

	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

type (
	// TestEntry is one test-source location within a package.
	TestEntry struct {
		DisplayName string
		// RelativePath is relative to the package root, in slash form.
		RelativePath string
		// Namespace is the resolved PSR-4 namespace without its trailing
		// separator, or nil when none could be resolved.
		Namespace *pkgmeta.Namespace
		Options   []string
		Filter    *string
	}

	// PackageDescriptor describes one discovered package. Descriptors are
	// rebuilt on every run and carry no identity across runs.
	PackageDescriptor struct {
		Name    string
		Version string
		// RootPath is the absolute package directory.
		RootPath    string
		TestEntries []TestEntry
		// DeclaredOptions are pass-through test-runner flags.
		DeclaredOptions map[string][]string
		// DependencyPackageNames is an ordering hint; it is not enforced.
		DependencyPackageNames []string
		// AutoloadDev is the package's own autoload-dev psr-4 table, the
		// source of every namespace the merge step injects.
		AutoloadDev pkgmeta.AutoloadMap
		// Source records which declaration entry point opted the package in.
		Source pkgmeta.DeclarationSource
	}

	// Registry maps package names to descriptors, remembering insertion order.
	// The first package registered under a name wins.
	Registry struct {
		order    []string
		packages map[string]*PackageDescriptor
	}

	// SummaryEntry is the persisted form of one package.
	SummaryEntry struct {
		AutoloadDev pkgmeta.AutoloadMap `json:"autoload_dev"`
	}

	// Summary is the flattened discovery result handed to the summary store.
	Summary map[string]SummaryEntry
)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]*PackageDescriptor)}
}

// Add registers desc under its name. It returns false, leaving the registry
// unchanged, when the name is already taken.
func (r *Registry) Add(desc *PackageDescriptor) bool {
	if desc == nil || r.Has(desc.Name) {
		return false
	}
	r.order = append(r.order, desc.Name)
	r.packages[desc.Name] = desc
	return true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.packages[name]
	return ok
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*PackageDescriptor, bool) {
	desc, ok := r.packages[name]
	return desc, ok
}

// Len returns the number of registered packages.
func (r *Registry) Len() int { return len(r.order) }

// Names returns the registered names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All iterates descriptors in insertion order.
func (r *Registry) All() iter.Seq2[string, *PackageDescriptor] {
	return func(yield func(string, *PackageDescriptor) bool) {
		for _, name := range r.order {
			if !yield(name, r.packages[name]) {
				return
			}
		}
	}
}

// Summary flattens the registry to package name -> autoload_dev table.
func (r *Registry) Summary() Summary {
	out := make(Summary, len(r.order))
	for name, desc := range r.All() {
		out[name] = SummaryEntry{AutoloadDev: desc.AutoloadDev}
	}
	return out
}
