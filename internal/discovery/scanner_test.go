// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const widgetsComposer = `{
	"name": "acme/widgets",
	"autoload-dev": {"psr-4": {"Acme\\Widgets\\Tests\\": "tests/"}}
}`

func TestScan_MissingRootYieldsEmptyRegistry(t *testing.T) {
	t.Parallel()

	result := NewScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "vendor"))
	if result.Registry == nil {
		t.Fatal("Scan() Registry = nil")
	}
	if result.Registry.Len() != 0 {
		t.Errorf("Registry.Len() = %d, want 0", result.Registry.Len())
	}
}

func TestScan_TwoLevelLayout(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "zeta/http",
		composer:    `{"name": "zeta/http", "autoload-dev": {"psr-4": {"Zeta\\Http\\Tests\\": "tests/"}}}`,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    widgetsComposer,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})
	// A package directly under the vendor root is one level too shallow.
	writeTestPackage(t, vendor, testPackage{
		dir:         "shallow",
		composer:    `{"name": "shallow/pkg"}`,
		declaration: `{"namespace": {}}`,
		dirs:        []string{"tests"},
	})
	// A package three levels deep is never visited.
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets/nested/deep",
		composer:    `{"name": "acme/deep"}`,
		declaration: `{"namespace": {}}`,
		dirs:        []string{"tests"},
	})
	writeTestFile(t, filepath.Join(vendor, "autoload.php"), "<?php")
	writeTestFile(t, filepath.Join(vendor, "acme", "README.md"), "readme")

	result := NewScanner().Scan(context.Background(), vendor)

	if got, want := result.Registry.Names(), []string{"acme/widgets", "zeta/http"}; !slices.Equal(got, want) {
		t.Errorf("Registry.Names() = %v, want %v", got, want)
	}
	if !hasDiagnostic(result.Diagnostics, CodePackageDiscovered) {
		t.Errorf("diagnostics = %v, want %s", result.Diagnostics, CodePackageDiscovered)
	}

	desc, ok := result.Registry.Get("acme/widgets")
	if !ok {
		t.Fatal("acme/widgets not registered")
	}
	if !filepath.IsAbs(desc.RootPath) {
		t.Errorf("RootPath = %q, want absolute", desc.RootPath)
	}
	if got, want := entryPaths(desc.TestEntries), []string{"tests"}; !slices.Equal(got, want) {
		t.Errorf("entry paths = %v, want %v", got, want)
	}
	if desc.TestEntries[0].DisplayName != `Acme\Widgets\Tests` {
		t.Errorf("DisplayName = %q, want namespace", desc.TestEntries[0].DisplayName)
	}
}

func TestScan_RequiresBothFiles(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	// Opted in only through composer extra: the scanner's pre-filter skips it.
	writeTestPackage(t, vendor, testPackage{
		dir:      "acme/extra-only",
		composer: `{"name": "acme/extra-only", "extra": {"package-tester": {}}}`,
		dirs:     []string{"tests/Unit"},
	})
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/no-composer",
		declaration: `{"namespace": {}}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	if result.Registry.Len() != 0 {
		t.Errorf("Registry.Names() = %v, want none", result.Registry.Names())
	}
}

func TestScan_FirstPackageNameWins(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	first := writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    widgetsComposer,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})
	writeTestPackage(t, vendor, testPackage{
		dir:         "mirror/widgets-copy",
		composer:    widgetsComposer,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)

	if got, want := result.Registry.Names(), []string{"acme/widgets"}; !slices.Equal(got, want) {
		t.Fatalf("Registry.Names() = %v, want %v", got, want)
	}
	desc, _ := result.Registry.Get("acme/widgets")
	if desc.RootPath != first {
		t.Errorf("RootPath = %q, want first discovered %q", desc.RootPath, first)
	}
	if !hasDiagnostic(result.Diagnostics, CodeDuplicatePackage) {
		t.Errorf("diagnostics = %v, want %s", result.Diagnostics, CodeDuplicatePackage)
	}
}

func TestScan_NameFallsBackToDirectory(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/unnamed",
		composer:    `{}`,
		declaration: `{"namespace": {"path": "checks"}}`,
		dirs:        []string{"checks"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	if got, want := result.Registry.Names(), []string{"unnamed"}; !slices.Equal(got, want) {
		t.Errorf("Registry.Names() = %v, want %v", got, want)
	}
}

func TestScan_DropsPackagesWithoutEntries(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	// autoload-dev points at a directory that does not exist.
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/stale",
		composer:    `{"name": "acme/stale", "autoload-dev": {"psr-4": {"Acme\\Stale\\": "tests/"}}}`,
		declaration: `{}`,
	})
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/disabled",
		composer:    widgetsComposer,
		declaration: `{"runner": {"enabled": false}}`,
		dirs:        []string{"tests"},
	})
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/broken",
		composer:    `{"name": "acme/broken"`,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)

	if result.Registry.Len() != 0 {
		t.Errorf("Registry.Names() = %v, want none", result.Registry.Names())
	}
	for _, code := range []string{CodeNoTestEntries, CodeTestPathMissing, CodeRunnerDisabled, CodeMetadataInvalid} {
		if !hasDiagnostic(result.Diagnostics, code) {
			t.Errorf("diagnostics missing %s: %v", code, result.Diagnostics)
		}
	}
}

func TestScan_NamespaceBlockIsExclusive(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir: "acme/widgets",
		composer: `{
			"name": "acme/widgets",
			"autoload-dev": {"psr-4": {
				"Acme\\Widgets\\Tests\\": "tests/",
				"Acme\\Widgets\\Bench\\": "bench/"
			}}
		}`,
		declaration: `{"namespace": {"path": "tests", "option": ["--testdox"], "filter": "Smoke"}, "dependency-packages": ["acme/core"]}`,
		dirs:        []string{"tests", "bench"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	desc, ok := result.Registry.Get("acme/widgets")
	if !ok {
		t.Fatal("acme/widgets not registered")
	}
	if got, want := entryPaths(desc.TestEntries), []string{"tests"}; !slices.Equal(got, want) {
		t.Errorf("entry paths = %v, want only the primary path %v", got, want)
	}
	entry := desc.TestEntries[0]
	if entry.Filter == nil || *entry.Filter != "Smoke" || !slices.Equal(entry.Options, []string{"--testdox"}) {
		t.Errorf("entry = %+v, want options and filter from the namespace block", entry)
	}
	if len(desc.AutoloadDev) != 2 {
		t.Errorf("AutoloadDev = %v, want both namespaces retained for merging", desc.AutoloadDev)
	}
	if !slices.Equal(desc.DependencyPackageNames, []string{"acme/core"}) {
		t.Errorf("DependencyPackageNames = %v", desc.DependencyPackageNames)
	}
}

func TestScan_NamespaceBlockDeclaresNamespace(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    `{"name": "acme/widgets"}`,
		declaration: `{"namespace": {"path": "tests", "namespace": "Acme\\Widgets\\Tests\\"}}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	desc, ok := result.Registry.Get("acme/widgets")
	if !ok {
		t.Fatalf("acme/widgets not registered, diagnostics: %v", result.Diagnostics)
	}
	entry := desc.TestEntries[0]
	if entry.Namespace == nil || *entry.Namespace != `Acme\Widgets\Tests` {
		t.Errorf("Namespace = %v, want the block's namespace without separator", entry.Namespace)
	}
	if entry.DisplayName != `Acme\Widgets\Tests` {
		t.Errorf("DisplayName = %q, want the block's namespace", entry.DisplayName)
	}
}

func TestScan_NamespaceBlockOverridesAutoload(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    widgetsComposer,
		declaration: `{"namespace": {"namespace": "Acme\\Checks"}}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	desc, ok := result.Registry.Get("acme/widgets")
	if !ok {
		t.Fatal("acme/widgets not registered")
	}
	if ns := desc.TestEntries[0].Namespace; ns == nil || *ns != `Acme\Checks` {
		t.Errorf("Namespace = %v, want Acme\\Checks", ns)
	}
}

func TestScan_DeclarationWithoutAutoloadDetectsLayout(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    `{"name": "acme/widgets"}`,
		declaration: `{}`,
		dirs:        []string{"tests/Unit", "tests/Benchmarks", "tests/Fixtures"},
	})

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"built-in ignores only", nil, []string{"tests/Unit", "tests/Benchmarks"}},
		{"configured ignore", []Option{WithIgnoredDirs("benchmarks")}, []string{"tests/Unit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := NewScanner(tt.opts...).Scan(context.Background(), vendor)
			desc, ok := result.Registry.Get("acme/widgets")
			if !ok {
				t.Fatal("acme/widgets not registered")
			}
			if got := entryPaths(desc.TestEntries); !slices.Equal(got, tt.want) {
				t.Errorf("entry paths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScan_CanceledContext(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    widgetsComposer,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewScanner().Scan(ctx, vendor)
	if result.Registry.Len() != 0 {
		t.Errorf("Registry.Names() = %v, want none after cancellation", result.Registry.Names())
	}
}

func TestScan_SymlinkedPackage(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	target := writeTestPackage(t, t.TempDir(), testPackage{
		dir:         "src/widgets",
		composer:    widgetsComposer,
		declaration: `{}`,
		dirs:        []string{"tests"},
	})
	if err := os.MkdirAll(filepath.Join(vendor, "acme"), 0o755); err != nil {
		t.Fatalf("failed to create group dir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(vendor, "acme", "widgets")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := NewScanner().Scan(context.Background(), vendor)
	if got, want := result.Registry.Names(), []string{"acme/widgets"}; !slices.Equal(got, want) {
		t.Errorf("Registry.Names() = %v, want %v", got, want)
	}
}

func TestRegistry_Summary(t *testing.T) {
	t.Parallel()

	vendor := t.TempDir()
	writeTestPackage(t, vendor, testPackage{
		dir:         "acme/widgets",
		composer:    widgetsComposer,
		declaration: `{"namespace": {}, "dependency-packages": ["acme/core"]}`,
		dirs:        []string{"tests"},
	})

	result := NewScanner().Scan(context.Background(), vendor)
	data, err := json.Marshal(result.Registry.Summary())
	if err != nil {
		t.Fatalf("Marshal(Summary()) error = %v", err)
	}

	want := `{"acme/widgets":{"autoload_dev":{"Acme\\Widgets\\Tests\\":"tests/"}}}`
	if string(data) != want {
		t.Errorf("Summary JSON = %s, want %s", data, want)
	}
}

func TestRegistry_AddRejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if !r.Add(&PackageDescriptor{Name: "acme/a", RootPath: "/first"}) {
		t.Fatal("Add(first) = false")
	}
	if r.Add(&PackageDescriptor{Name: "acme/a", RootPath: "/second"}) {
		t.Error("Add(duplicate) = true, want false")
	}
	if r.Add(nil) {
		t.Error("Add(nil) = true, want false")
	}
	desc, _ := r.Get("acme/a")
	if desc.RootPath != "/first" {
		t.Errorf("RootPath = %q, want /first", desc.RootPath)
	}

	r.Add(&PackageDescriptor{Name: "acme/b"})
	var visited []string
	for name := range r.All() {
		visited = append(visited, name)
		break
	}
	if !slices.Equal(visited, []string{"acme/a"}) {
		t.Errorf("All() early break visited %v", visited)
	}
}
