// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "pkgtester",
		Short: "Discover vendor test suites and merge their namespaces",
		Long: TitleStyle.Render("pkgtester") + SubtitleStyle.Render(" - vendor test discovery for Composer projects") + `

pkgtester walks the vendor/<group>/<package> tree of a root project, finds
the dependency packages that declare test suites, and merges their PSR-4
test namespaces into the root project's autoload-dev table. Namespaces the
root project already maps are never overwritten.

A package opts in with a package-tester.json file next to its composer.json.

` + SubtitleStyle.Render("Examples:") + `
  pkgtester discover            List packages that declare tests
  pkgtester merge               Show the merged autoload-dev table
  pkgtester merge --save        Also persist the discovery summary
  pkgtester watch               Re-merge whenever package metadata changes
  pkgtester config show         Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/pkgtester/config.cue, then ./pkgtester.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "root project directory (default is the working directory)")

	rootCmd.AddCommand(
		newDiscoverCommand(app, flags),
		newMergeCommand(app, flags),
		newSummaryCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// runWithSession loads the project session, shows configuration warnings
// and runs fn. Failures carrying a ServiceError are rendered here.
func (a *App) runWithSession(cmd *cobra.Command, flags *rootFlagValues, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := a.loadSession(ctx, flags)
	if err != nil {
		return a.handleError(cmd, err, config.ColorSchemeAuto)
	}
	a.Diagnostics.Render(ctx, s.diags, a.stderr, s.verbose)

	if err := fn(ctx, s); err != nil {
		return a.handleError(cmd, err, s.cfg.UI.ColorScheme)
	}
	return nil
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process on failure.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// errorHandler skips failures the command already rendered.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
