// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"fmt"
	"log/slog"

	"github.com/pkgtester/pkgtester/internal/discovery"
	"github.com/pkgtester/pkgtester/pkg/fspath"
)

const (
	// CodeNamespaceInjected is emitted for every namespace added to the table.
	CodeNamespaceInjected = "namespace_injected"
	// CodeNamespaceSkipped is emitted when the table already maps a namespace.
	CodeNamespaceSkipped = "namespace_skipped"
	// CodeDirectoryNotFound is emitted for autoload paths missing on disk.
	CodeDirectoryNotFound = "directory_not_found"
)

// Result is the outcome of a Merge.
type Result struct {
	// Table is the merged table. It is the table passed to Merge, mutated in
	// place, unless that table was nil.
	Table       Table
	Injected    int
	Skipped     int
	Diagnostics []discovery.Diagnostic
}

// Warnings returns the warning diagnostics of the merge.
func (r Result) Warnings() []discovery.Diagnostic {
	return discovery.Warnings(r.Diagnostics)
}

// Merge injects the autoload-dev namespaces of every package in reg into
// table. Packages are visited in registry order and each package's own
// table in declaration order, one (namespace, path) pair at a time.
//
// Paths under baseDir are stored relative to it; others keep their absolute
// form. A namespace already present in table is left untouched and counted
// as skipped, so merging the same registry twice injects nothing the second
// time.
func Merge(reg *discovery.Registry, table Table, baseDir string) Result {
	if table == nil {
		table = make(Table)
	}
	result := Result{Table: table}
	if reg == nil {
		return result
	}

	for name, desc := range reg.All() {
		for _, pair := range desc.AutoloadDev.Pairs() {
			dir := fspath.Join(desc.RootPath, pair.Paths[0])
			if !fspath.IsDir(dir) {
				result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
					Severity: discovery.SeverityWarning,
					Code:     CodeDirectoryNotFound,
					Message:  fmt.Sprintf("package %s maps %s to missing directory %s", name, pair.Namespace, dir),
					Package:  name,
					Path:     dir,
				})
				continue
			}

			ns := pair.Namespace.WithSeparator()
			target := dir
			if rel, ok := fspath.RelUnder(baseDir, dir); ok {
				target = rel
			}

			if existing, taken := table[ns]; taken {
				result.Skipped++
				result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
					Severity: discovery.SeverityInfo,
					Code:     CodeNamespaceSkipped,
					Message:  fmt.Sprintf("namespace %s already maps to %s, keeping it over %s", ns, existing, target),
					Package:  name,
					Path:     dir,
				})
				continue
			}

			table[ns] = target
			result.Injected++
			slog.Debug("namespace injected", "package", name, "namespace", string(ns), "path", target)
			result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
				Severity: discovery.SeverityInfo,
				Code:     CodeNamespaceInjected,
				Message:  fmt.Sprintf("injected namespace %s -> %s", ns, target),
				Package:  name,
				Path:     dir,
			})
		}
	}

	return result
}
