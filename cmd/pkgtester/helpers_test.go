// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgtester/pkgtester/internal/config"
)

const (
	rootComposer    = `{"name": "acme/app", "autoload-dev": {"psr-4": {"App\\Tests\\": "tests/"}}}`
	widgetsComposer = `{"name": "acme/widgets", "version": "1.2.0", "autoload-dev": {"psr-4": {"Acme\\Widgets\\Tests\\": "tests/"}}}`
)

// stubConfigProvider returns a fixed configuration, keeping tests
// independent of the user's config directory and environment.
type stubConfigProvider struct {
	cfg *config.Config
	err error
}

func (p stubConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &cfg, nil
}

// runCLI executes the root command in-process and returns its output.
func runCLI(t *testing.T, deps Dependencies, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	deps.Stdout = &out
	deps.Stderr = &errOut
	if deps.Config == nil {
		deps.Config = stubConfigProvider{cfg: config.DefaultConfig()}
	}

	app, err := NewApp(deps)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	root := newRootCommand(app)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeProject creates a root project with one vendor package that declares
// tests, and returns the project directory.
func writeProject(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	writeTestFile(t, filepath.Join(base, "composer.json"), rootComposer)
	pkg := filepath.Join(base, "vendor", "acme", "widgets")
	writeTestFile(t, filepath.Join(pkg, "composer.json"), widgetsComposer)
	writeTestFile(t, filepath.Join(pkg, "package-tester.json"), `{}`)
	if err := os.MkdirAll(filepath.Join(pkg, "tests", "Unit"), 0o755); err != nil {
		t.Fatalf("failed to create tests dir: %v", err)
	}
	return base
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
