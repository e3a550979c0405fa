// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"errors"
	"io/fs"
	"maps"
	"slices"

	"github.com/pkgtester/pkgtester/internal/issue"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

// Table is the root project's autoload-dev psr-4 table. Keys carry exactly
// one trailing namespace separator; values are slash-form paths relative to
// the root project, or absolute paths for directories outside it.
type Table map[pkgmeta.Namespace]string

// TableFromAutoload converts a decoded PSR-4 map into a Table. A namespace
// mapped to several paths keeps its first path, and a namespace repeated
// under different spellings keeps its first declaration.
func TableFromAutoload(m pkgmeta.AutoloadMap) Table {
	t := make(Table, len(m))
	for _, rule := range m {
		if len(rule.Paths) == 0 {
			continue
		}
		ns := rule.Namespace.WithSeparator()
		if _, ok := t[ns]; ok {
			continue
		}
		t[ns] = rule.Paths[0]
	}
	return t
}

// Namespaces returns the table keys in sorted order.
func (t Table) Namespaces() []pkgmeta.Namespace {
	return slices.Sorted(maps.Keys(t))
}

// Clone returns a shallow copy of t. Cloning a nil Table yields an empty one.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	maps.Copy(out, t)
	return out
}

// ReadRootTable reads the autoload-dev psr-4 table from the root project's
// metadata file at path.
func ReadRootTable(path string) (Table, error) {
	meta, err := pkgmeta.ReadMetadata(path)
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("read root project metadata").
			WithResource(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			ctx.WithSuggestion("Run pkgtester from the root project directory, or pass --dir")
		case errors.Is(err, pkgmeta.ErrInvalidMetadata):
			ctx.WithSuggestion("Check the file for JSON syntax errors")
		}
		return nil, ctx.Wrap(err).BuildError()
	}
	return TableFromAutoload(meta.AutoloadDev.PSR4), nil
}
