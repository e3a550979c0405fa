// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/issue"
)

func newSummaryCommand(app *App, flags *rootFlagValues) *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Inspect the persisted discovery summary",
		Long: `The discovery summary records, for every discovered package, the
autoload-dev table that merge --save used. It lives at summary_file
(default vendor/composer/package-tester.json).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted discovery summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(_ context.Context, s *session) error {
				return showSummary(app, s, asJSON)
			})
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted discovery summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(_ context.Context, s *session) error {
				store := s.summaryStore()
				if err := store.Clear(); err != nil {
					return serviceErrorFor(err, issue.SummaryWriteFailedId, s.verbose)
				}
				fmt.Fprintf(app.stdout, "%s Removed %s\n", SuccessStyle.Render("✓"), s.display(store.Path))
				return nil
			})
		},
	}

	summaryCmd.AddCommand(showCmd, clearCmd)
	return summaryCmd
}

func showSummary(app *App, s *session, asJSON bool) error {
	store := s.summaryStore()
	sum, err := store.Load()
	if err != nil {
		wrapped := issue.NewErrorContext().
			WithOperation("load discovery summary").
			WithResource(store.Path).
			WithSuggestion("Run 'pkgtester merge --save' to regenerate it").
			Wrap(err).
			BuildError()
		return serviceErrorFor(wrapped, 0, s.verbose)
	}

	if asJSON {
		return writeJSON(app.stdout, sum)
	}

	if len(sum) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No discovery summary at "+s.display(store.Path)))
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(sum)) {
		fmt.Fprintln(app.stdout, TitleStyle.Render(name))
		for _, rule := range sum[name].AutoloadDev.Pairs() {
			for _, p := range rule.Paths {
				fmt.Fprintf(app.stdout, "  %s => %s\n", NamespaceStyle.Render(rule.Namespace.String()), p)
			}
		}
	}
	return nil
}
