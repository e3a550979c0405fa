// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/discovery"
)

type (
	// packageView is the --json form of one discovered package.
	packageView struct {
		Name               string              `json:"name"`
		Version            string              `json:"version"`
		Path               string              `json:"path"`
		Source             string              `json:"source"`
		Tests              []entryView         `json:"tests"`
		Options            map[string][]string `json:"options,omitempty"`
		DependencyPackages []string            `json:"dependency_packages,omitempty"`
	}

	entryView struct {
		Name      string   `json:"name"`
		Path      string   `json:"path"`
		Namespace string   `json:"namespace,omitempty"`
		Options   []string `json:"options,omitempty"`
		Filter    *string  `json:"filter,omitempty"`
	}
)

func newDiscoverCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List vendor packages that declare tests",
		Long: `Scan vendor/<group>/<package> and list every package that ships both a
composer.json and a package-tester.json and resolves at least one test entry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(ctx context.Context, s *session) error {
				return runDiscover(ctx, app, s, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the packages as JSON")

	return cmd
}

func runDiscover(ctx context.Context, app *App, s *session, asJSON bool) error {
	result, err := app.scan(ctx, s)
	if err != nil {
		return err
	}
	app.Diagnostics.Render(ctx, result.Diagnostics, app.stderr, s.verbose)

	views := packageViews(s, result.Registry)
	if asJSON {
		return writeJSON(app.stdout, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No packages with tests found in "+s.display(s.vendorRoot())))
		return nil
	}
	for _, v := range views {
		fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render(v.Name), SubtitleStyle.Render(v.Version))
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render(v.Path+" ("+v.Source+")"))
		for _, e := range v.Tests {
			line := fmt.Sprintf("  • %s  %s", e.Name, e.Path)
			if e.Namespace != "" {
				line += "  " + NamespaceStyle.Render(e.Namespace)
			}
			if len(e.Options) > 0 {
				line += "  " + SubtitleStyle.Render(strings.Join(e.Options, " "))
			}
			fmt.Fprintln(app.stdout, line)
		}
	}
	fmt.Fprintf(app.stdout, "\n%s %d package(s) with tests\n", SuccessStyle.Render("✓"), len(views))
	return nil
}

func packageViews(s *session, reg *discovery.Registry) []packageView {
	views := make([]packageView, 0, reg.Len())
	for name, desc := range reg.All() {
		v := packageView{
			Name:               name,
			Version:            desc.Version,
			Path:               s.display(desc.RootPath),
			Source:             desc.Source.String(),
			Tests:              make([]entryView, 0, len(desc.TestEntries)),
			Options:            desc.DeclaredOptions,
			DependencyPackages: desc.DependencyPackageNames,
		}
		for _, e := range desc.TestEntries {
			ev := entryView{
				Name:    e.DisplayName,
				Path:    e.RelativePath,
				Options: e.Options,
				Filter:  e.Filter,
			}
			if e.Namespace != nil {
				ev.Namespace = e.Namespace.String()
			}
			v.Tests = append(v.Tests, ev)
		}
		views = append(views, v)
	}
	return views
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
