// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgtester/pkgtester/internal/config"
	"github.com/pkgtester/pkgtester/internal/issue"
)

type configInitOptions struct {
	stdout bool
	user   bool
	force  bool
}

func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pkgtester configuration",
		Long: `Manage pkgtester configuration.

Configuration is read from the first file found of:
  - the file passed with --config
  - the user config file (Linux: ~/.config/pkgtester/config.cue)
  - pkgtester.cue in the root project

PKGTESTER_* variables, from the environment or the project's .env file,
override file values (e.g. PKGTESTER_VENDOR_DIR, PKGTESTER_UI_VERBOSE).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(_ context.Context, s *session) error {
				showConfig(app, s)
				return nil
			})
		},
	})

	var initOpts configInitOptions
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Long: `Write a configuration file with the default values. By default the file is
pkgtester.cue in the root project; --user writes the user config file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWithSession(cmd, flags, func(_ context.Context, s *session) error {
				return initConfig(app, s, initOpts)
			})
		},
	}
	initCmd.Flags().BoolVar(&initOpts.stdout, "stdout", false, "print the configuration instead of writing it")
	initCmd.Flags().BoolVar(&initOpts.user, "user", false, "write the user config file")
	initCmd.Flags().BoolVar(&initOpts.force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(app *App, s *session) {
	cfg := s.cfg
	key := func(k string) string { return NamespaceStyle.Render(k) }
	val := func(v any) string { return SuccessStyle.Render(fmt.Sprint(v)) }

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)
	if cfg.Source != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", key("Project"), s.baseDir)
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", key("vendor_dir"), val(cfg.VendorDir))
	fmt.Fprintf(app.stdout, "%s: %s\n", key("metadata_file"), val(cfg.MetadataFile))
	fmt.Fprintf(app.stdout, "%s: %s\n", key("declaration_file"), val(cfg.DeclarationFile))
	fmt.Fprintf(app.stdout, "%s: %s\n", key("summary_file"), val(cfg.SummaryFile))
	if len(cfg.IgnoreDirs) == 0 {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("ignore_dirs"), SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", key("ignore_dirs"), val(strings.Join(cfg.IgnoreDirs, ", ")))
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", key("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", val(cfg.UI.ColorScheme))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", val(cfg.UI.Verbose))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", key("watch"))
	fmt.Fprintf(app.stdout, "  debounce: %s\n", val(cfg.Watch.Debounce))
}

func initConfig(app *App, s *session, opts configInitOptions) error {
	cfg := config.DefaultConfig()
	if opts.stdout {
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
		return nil
	}

	target := filepath.Join(s.baseDir, config.LocalConfigFileName)
	if opts.user {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		target = filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	}

	if err := config.WriteConfigFile(target, cfg, opts.force); err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("write configuration").
			WithResource(target)
		if errors.Is(err, fs.ErrExist) {
			ctx.WithSuggestion("Pass --force to overwrite it")
		}
		return serviceErrorFor(ctx.Wrap(err).BuildError(), 0, s.verbose)
	}

	fmt.Fprintf(app.stdout, "%s Created configuration at %s\n", SuccessStyle.Render("✓"), s.display(target))
	return nil
}
