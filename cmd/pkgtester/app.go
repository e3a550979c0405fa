// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pkgtester/pkgtester/internal/config"
	"github.com/pkgtester/pkgtester/internal/discovery"
	"github.com/pkgtester/pkgtester/internal/issue"
	"github.com/pkgtester/pkgtester/internal/summary"
	"github.com/pkgtester/pkgtester/pkg/fspath"
)

// codeConfigLoadFailed marks the diagnostic emitted when the CLI falls back
// to default configuration.
const codeConfigLoadFailed = "config_load_failed"

type (
	// App is the composition root of the CLI. Command handlers receive it and
	// reach every collaborator through its fields.
	App struct {
		Config      ConfigProvider
		Discovery   DiscoveryService
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config      ConfigProvider
		Discovery   DiscoveryService
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// DiscoveryService scans the vendor tree of a project.
	DiscoveryService interface {
		Scan(ctx context.Context, cfg *config.Config, vendorRoot string) discovery.ScanResult
	}

	// DiagnosticRenderer renders structured diagnostics. Info diagnostics are
	// only shown when verbose is set.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, stderr io.Writer, verbose bool)
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		verbose    bool
		configPath string
		dir        string
	}

	// session is the per-invocation view of one root project.
	session struct {
		cfg     *config.Config
		baseDir string
		verbose bool
		// diags holds configuration diagnostics to show before command output.
		diags []discovery.Diagnostic
	}

	vendorDiscoveryService struct{}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Discovery == nil {
		deps.Discovery = &vendorDiscoveryService{}
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Discovery:   deps.Discovery,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// loadSession resolves the project directory and its configuration and
// installs the logger. A config file given with --config must load; any
// other configuration failure falls back to defaults with a warning.
func (a *App) loadSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	dir := flags.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		dir = wd
	}
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}
	if !fspath.IsDir(baseDir) {
		err := issue.NewErrorContext().
			WithOperation("open project directory").
			WithResource(baseDir).
			WithSuggestion("Pass an existing root project directory with --dir").
			Wrap(os.ErrNotExist).
			BuildError()
		return nil, serviceErrorFor(err, issue.RootMetadataNotFoundId, flags.verbose)
	}

	s := &session{baseDir: baseDir}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath, BaseDir: baseDir})
	switch {
	case err == nil:
		s.cfg = cfg
	case flags.configPath != "" || errors.Is(err, context.Canceled):
		return nil, serviceErrorFor(err, issue.ConfigLoadFailedId, flags.verbose)
	default:
		s.cfg = config.DefaultConfig()
		s.diags = append(s.diags, discovery.Diagnostic{
			Severity: discovery.SeverityWarning,
			Code:     codeConfigLoadFailed,
			Message:  fmt.Sprintf("failed to load config, using defaults: %v", err),
			Cause:    err,
		})
	}

	s.verbose = flags.verbose || s.cfg.UI.Verbose
	installLogger(a.stderr, s.verbose)
	return s, nil
}

// resolve anchors p at the project directory unless it is absolute.
func (s *session) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return fspath.Join(s.baseDir, p)
}

func (s *session) vendorRoot() string { return s.resolve(s.cfg.VendorDir) }

func (s *session) rootMetadataPath() string { return s.resolve(s.cfg.MetadataFile) }

func (s *session) summaryStore() *summary.Store { return summary.NewStore(s.resolve(s.cfg.SummaryFile)) }

// display shortens p to a project-relative path when it lies inside the project.
func (s *session) display(p string) string {
	if rel, ok := fspath.RelUnder(s.baseDir, p); ok {
		return rel
	}
	return p
}

// scan runs discovery over the configured vendor directory. A missing vendor
// directory is reported as an error rather than an empty result.
func (a *App) scan(ctx context.Context, s *session) (discovery.ScanResult, error) {
	root := s.vendorRoot()
	if !fspath.IsDir(root) {
		err := issue.NewErrorContext().
			WithOperation("scan vendor directory").
			WithResource(root).
			WithSuggestion("Install the dependencies, or set vendor_dir in the configuration").
			Wrap(os.ErrNotExist).
			BuildError()
		return discovery.ScanResult{}, serviceErrorFor(err, issue.VendorDirNotFoundId, s.verbose)
	}
	return a.Discovery.Scan(ctx, s.cfg, root), nil
}

// handleError renders a ServiceError and turns it into an ExitError, so
// fang does not print the failure a second time.
func (a *App) handleError(cmd *cobra.Command, err error, scheme config.ColorScheme) error {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return err
	}
	renderServiceError(a.stderr, svcErr, issueStyle(scheme, a.stderr))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}

// issueStyle picks the glamour style for catalog pages. The automatic scheme
// follows the terminal background and disables styling off-terminal.
func issueStyle(scheme config.ColorScheme, w io.Writer) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func (vendorDiscoveryService) Scan(ctx context.Context, cfg *config.Config, vendorRoot string) discovery.ScanResult {
	return discovery.NewScanner(
		discovery.WithMetadataFile(cfg.MetadataFile),
		discovery.WithDeclarationFile(cfg.DeclarationFile),
		discovery.WithIgnoredDirs(cfg.IgnoreDirs...),
	).Scan(ctx, vendorRoot)
}

// Render writes diagnostics to stderr with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, stderr io.Writer, verbose bool) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity != discovery.SeverityWarning {
			if !verbose {
				continue
			}
			prefix = VerboseStyle.Render("info")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}
