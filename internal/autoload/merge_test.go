// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgtester/pkgtester/internal/discovery"
	"github.com/pkgtester/pkgtester/internal/issue"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

// newTestRegistry registers one package per descriptor, creating every
// directory listed in dirs under the package root first.
func newTestRegistry(t *testing.T, pkgs ...testDescriptor) *discovery.Registry {
	t.Helper()

	reg := discovery.NewRegistry()
	for _, p := range pkgs {
		for _, dir := range p.dirs {
			if err := os.MkdirAll(filepath.Join(p.root, filepath.FromSlash(dir)), 0o755); err != nil {
				t.Fatalf("failed to create %s: %v", dir, err)
			}
		}
		reg.Add(&discovery.PackageDescriptor{
			Name:        p.name,
			RootPath:    p.root,
			AutoloadDev: p.autoload,
		})
	}
	return reg
}

type testDescriptor struct {
	name     string
	root     string
	autoload pkgmeta.AutoloadMap
	dirs     []string
}

func TestMerge_InjectsRelativePaths(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t, testDescriptor{
		name:     "acme/widgets",
		root:     filepath.Join(base, "vendor", "acme", "widgets"),
		autoload: pkgmeta.AutoloadMap{{Namespace: `Acme\Widgets\Tests`, Paths: []string{"tests/"}}},
		dirs:     []string{"tests"},
	})

	result := Merge(reg, Table{`App\Tests\`: "tests/"}, base)

	want := Table{
		`App\Tests\`:          "tests/",
		`Acme\Widgets\Tests\`: "vendor/acme/widgets/tests",
	}
	if !maps.Equal(result.Table, want) {
		t.Errorf("Table = %v, want %v", result.Table, want)
	}
	if result.Injected != 1 || result.Skipped != 0 {
		t.Errorf("Injected, Skipped = %d, %d, want 1, 0", result.Injected, result.Skipped)
	}
	if !hasCode(result.Diagnostics, CodeNamespaceInjected) {
		t.Errorf("diagnostics = %v, want %s", result.Diagnostics, CodeNamespaceInjected)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t, testDescriptor{
		name: "acme/widgets",
		root: filepath.Join(base, "vendor", "acme", "widgets"),
		autoload: pkgmeta.AutoloadMap{
			{Namespace: `Acme\Widgets\Tests\`, Paths: []string{"tests/"}},
			{Namespace: `Acme\Widgets\Bench\`, Paths: []string{"bench"}},
		},
		dirs: []string{"tests", "bench"},
	})

	first := Merge(reg, nil, base)
	if first.Injected != 2 {
		t.Fatalf("first Injected = %d, want 2", first.Injected)
	}
	snapshot := first.Table.Clone()

	second := Merge(reg, first.Table, base)
	if second.Injected != 0 {
		t.Errorf("second Injected = %d, want 0", second.Injected)
	}
	if second.Skipped != 2 {
		t.Errorf("second Skipped = %d, want 2", second.Skipped)
	}
	if !maps.Equal(second.Table, snapshot) {
		t.Errorf("second Table = %v, want unchanged %v", second.Table, snapshot)
	}
}

func TestMerge_ExistingNamespaceWins(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t, testDescriptor{
		name:     "bar/pkg",
		root:     filepath.Join(base, "vendor", "bar", "pkg"),
		autoload: pkgmeta.AutoloadMap{{Namespace: `Foo\Tests\`, Paths: []string{"bar/tests"}}},
		dirs:     []string{"bar/tests"},
	})

	result := Merge(reg, Table{`Foo\Tests\`: "foo/tests"}, base)

	if got := result.Table[`Foo\Tests\`]; got != "foo/tests" {
		t.Errorf(`Table["Foo\Tests\"] = %q, want foo/tests`, got)
	}
	if result.Skipped != 1 || result.Injected != 0 {
		t.Errorf("Injected, Skipped = %d, %d, want 0, 1", result.Injected, result.Skipped)
	}
	if !hasCode(result.Diagnostics, CodeNamespaceSkipped) {
		t.Errorf("diagnostics = %v, want %s", result.Diagnostics, CodeNamespaceSkipped)
	}
}

func TestMerge_FirstPackageWinsAcrossRegistry(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t,
		testDescriptor{
			name:     "acme/first",
			root:     filepath.Join(base, "vendor", "acme", "first"),
			autoload: pkgmeta.AutoloadMap{{Namespace: `Shared\Tests\`, Paths: []string{"tests"}}},
			dirs:     []string{"tests"},
		},
		testDescriptor{
			name:     "acme/second",
			root:     filepath.Join(base, "vendor", "acme", "second"),
			autoload: pkgmeta.AutoloadMap{{Namespace: `Shared\Tests`, Paths: []string{"tests"}}},
			dirs:     []string{"tests"},
		},
	)

	result := Merge(reg, nil, base)
	if got := result.Table[`Shared\Tests\`]; got != "vendor/acme/first/tests" {
		t.Errorf("Table value = %q, want the first package's path", got)
	}
	if result.Injected != 1 || result.Skipped != 1 {
		t.Errorf("Injected, Skipped = %d, %d, want 1, 1", result.Injected, result.Skipped)
	}
}

func TestMerge_MissingDirectoryWarns(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t, testDescriptor{
		name: "acme/widgets",
		root: filepath.Join(base, "vendor", "acme", "widgets"),
		autoload: pkgmeta.AutoloadMap{
			{Namespace: `Acme\Gone\`, Paths: []string{"gone/"}},
			{Namespace: `Acme\Tests\`, Paths: []string{"tests"}},
		},
		dirs: []string{"tests"},
	})

	result := Merge(reg, nil, base)

	if _, ok := result.Table[`Acme\Gone\`]; ok {
		t.Error("missing directory was injected")
	}
	if result.Injected != 1 || result.Skipped != 0 {
		t.Errorf("Injected, Skipped = %d, %d, want 1, 0", result.Injected, result.Skipped)
	}
	warnings := result.Warnings()
	if len(warnings) != 1 || warnings[0].Code != CodeDirectoryNotFound {
		t.Errorf("Warnings() = %v, want one %s", warnings, CodeDirectoryNotFound)
	}
}

func TestMerge_MultiPathNamespace(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := newTestRegistry(t, testDescriptor{
		name:     "acme/widgets",
		root:     filepath.Join(base, "vendor", "acme", "widgets"),
		autoload: pkgmeta.AutoloadMap{{Namespace: `Acme\Tests\`, Paths: []string{"missing", "tests/unit", "tests/feature"}}},
		dirs:     []string{"tests/unit", "tests/feature"},
	})

	result := Merge(reg, nil, base)

	// The first existing path claims the namespace, the next one is a conflict.
	if got := result.Table[`Acme\Tests\`]; got != "vendor/acme/widgets/tests/unit" {
		t.Errorf("Table value = %q, want tests/unit path", got)
	}
	if result.Injected != 1 || result.Skipped != 1 {
		t.Errorf("Injected, Skipped = %d, %d, want 1, 1", result.Injected, result.Skipped)
	}
	if len(result.Warnings()) != 1 {
		t.Errorf("Warnings() = %v, want one", result.Warnings())
	}
}

func TestMerge_PathOutsideBaseStaysAbsolute(t *testing.T) {
	t.Parallel()

	external := filepath.Join(t.TempDir(), "widgets")
	reg := newTestRegistry(t, testDescriptor{
		name:     "acme/widgets",
		root:     external,
		autoload: pkgmeta.AutoloadMap{{Namespace: `Acme\Tests\`, Paths: []string{"tests"}}},
		dirs:     []string{"tests"},
	})

	result := Merge(reg, nil, t.TempDir())

	want := filepath.Join(external, "tests")
	if got := result.Table[`Acme\Tests\`]; got != want {
		t.Errorf("Table value = %q, want absolute %q", got, want)
	}
}

func TestMerge_NilInputs(t *testing.T) {
	t.Parallel()

	result := Merge(nil, nil, "")
	if result.Table == nil {
		t.Fatal("Table = nil, want empty table")
	}
	if result.Injected != 0 || result.Skipped != 0 || len(result.Diagnostics) != 0 {
		t.Errorf("Result = %+v, want zero counts", result)
	}
}

func TestReadRootTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, pkgmeta.MetadataFileName)
	data := `{"autoload-dev": {"psr-4": {"App\\Tests": ["tests/", "more/"], "App\\Tests\\": "dupe/"}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write root metadata: %v", err)
	}

	table, err := ReadRootTable(path)
	if err != nil {
		t.Fatalf("ReadRootTable() error = %v", err)
	}
	want := Table{`App\Tests\`: "tests/"}
	if !maps.Equal(table, want) {
		t.Errorf("ReadRootTable() = %v, want %v", table, want)
	}
}

func TestReadRootTable_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := ReadRootTable(filepath.Join(dir, "missing.json"))
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("ReadRootTable(missing) error = %v, want *issue.ActionableError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) || !ae.HasSuggestions() {
		t.Errorf("ReadRootTable(missing) error = %v, want wrapped fs.ErrNotExist with a suggestion", err)
	}

	invalid := filepath.Join(dir, "composer.json")
	if err := os.WriteFile(invalid, []byte("{"), 0o644); err != nil {
		t.Fatalf("failed to write root metadata: %v", err)
	}
	if _, err := ReadRootTable(invalid); !errors.Is(err, pkgmeta.ErrInvalidMetadata) {
		t.Errorf("ReadRootTable(invalid) error = %v, want ErrInvalidMetadata", err)
	}
}

func TestTable_Namespaces(t *testing.T) {
	t.Parallel()

	table := Table{`Zeta\`: "z", `Alpha\`: "a"}
	got := table.Namespaces()
	if len(got) != 2 || got[0] != `Alpha\` || got[1] != `Zeta\` {
		t.Errorf("Namespaces() = %v, want sorted", got)
	}
}

func hasCode(diags []discovery.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
