// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/watch"
	"github.com/pkgtester/pkgtester/pkg/fspath"
)

var errVendorOutsideProject = errors.New("vendor directory must be inside the root project to be watched")

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run merge whenever package metadata changes",
		Long: `Run merge once, then watch the root composer.json and the composer.json and
package-tester.json of every vendor package. Each burst of changes triggers
one new merge after the configured debounce (watch.debounce, default 500ms).

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(ctx context.Context, s *session) error {
				return runWatch(ctx, app, s, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the discovery summary after every merge")

	return cmd
}

// watchConfig derives the watched patterns from the configured file names.
// The summary file is ignored so that merge --save cannot retrigger itself.
func watchConfig(s *session) (watch.Config, error) {
	vendor, ok := fspath.RelUnder(s.baseDir, s.vendorRoot())
	if !ok {
		return watch.Config{}, fmt.Errorf("%w: %s", errVendorOutsideProject, s.vendorRoot())
	}

	cfg := watch.Config{
		BaseDir: s.baseDir,
		Patterns: []string{
			s.cfg.MetadataFile,
			path.Join(vendor, "*", "*", s.cfg.MetadataFile),
			path.Join(vendor, "*", "*", s.cfg.DeclarationFile),
		},
		Debounce: s.cfg.Watch.Debounce,
	}
	if summaryRel, ok := fspath.RelUnder(s.baseDir, s.summaryStore().Path); ok {
		cfg.Ignore = append(cfg.Ignore, summaryRel)
	}
	return cfg, nil
}

func runWatch(ctx context.Context, app *App, s *session, opts mergeOptions) error {
	cfg, err := watchConfig(s)
	if err != nil {
		return err
	}

	remerge := func(ctx context.Context) {
		if err := runMerge(ctx, app, s, opts); err != nil {
			fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, s.verbose))
		}
	}

	cfg.Stderr = app.stderr
	cfg.OnChange = func(ctx context.Context, changed []string) error {
		fmt.Fprintf(app.stdout, "\n%s Detected %d change(s), merging again\n", NamespaceStyle.Render("→"), len(changed))
		if s.verbose {
			for _, c := range changed {
				fmt.Fprintf(app.stdout, "  %s\n", VerboseStyle.Render(c))
			}
		}
		remerge(ctx)
		fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n", NamespaceStyle.Render("→"))
		return nil
	}

	w, err := watch.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	remerge(ctx)
	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n", NamespaceStyle.Render("→"))
	return w.Run(ctx)
}
