// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/autoload"
	"github.com/pkgtester/pkgtester/internal/issue"
)

type (
	mergeOptions struct {
		asJSON bool
		save   bool
	}

	// mergeView is the --json form of a merge.
	mergeView struct {
		Injected int            `json:"injected"`
		Skipped  int            `json:"skipped"`
		PSR4     autoload.Table `json:"psr-4"`
	}
)

func newMergeCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge vendor test namespaces into the root autoload-dev table",
		Long: `Read the root project's autoload-dev psr-4 table, scan the vendor tree and
inject the test namespaces of every discovered package. Namespaces the root
table already maps are kept as they are, so running merge twice is a no-op.

The merged table is printed; composer.json itself is not rewritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(ctx context.Context, s *session) error {
				return runMerge(ctx, app, s, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the merged table as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the discovery summary to summary_file")

	return cmd
}

func runMerge(ctx context.Context, app *App, s *session, opts mergeOptions) error {
	table, err := autoload.ReadRootTable(s.rootMetadataPath())
	if err != nil {
		return serviceErrorFor(err, issue.RootMetadataNotFoundId, s.verbose)
	}

	scan, err := app.scan(ctx, s)
	if err != nil {
		return err
	}
	app.Diagnostics.Render(ctx, scan.Diagnostics, app.stderr, s.verbose)

	result := autoload.Merge(scan.Registry, table, s.baseDir)
	app.Diagnostics.Render(ctx, result.Diagnostics, app.stderr, s.verbose)

	if opts.save {
		store := s.summaryStore()
		if err := store.Save(scan.Registry.Summary()); err != nil {
			wrapped := issue.NewErrorContext().
				WithOperation("save discovery summary").
				WithResource(store.Path).
				Wrap(err).
				BuildError()
			return serviceErrorFor(wrapped, issue.SummaryWriteFailedId, s.verbose)
		}
	}

	if opts.asJSON {
		return writeJSON(app.stdout, mergeView{
			Injected: result.Injected,
			Skipped:  result.Skipped,
			PSR4:     result.Table,
		})
	}

	fmt.Fprintf(app.stdout, "%s Injected %d namespace(s), skipped %d\n",
		SuccessStyle.Render("✓"), result.Injected, result.Skipped)
	if opts.save {
		fmt.Fprintf(app.stdout, "%s Saved discovery summary to %s\n",
			SuccessStyle.Render("✓"), s.display(s.summaryStore().Path))
	}
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, TitleStyle.Render("autoload-dev.psr-4"))
	if len(result.Table) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(empty)"))
		return nil
	}
	for _, ns := range result.Table.Namespaces() {
		fmt.Fprintf(app.stdout, "  %s => %s\n", NamespaceStyle.Render(ns.String()), result.Table[ns])
	}
	return nil
}
