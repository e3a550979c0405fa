// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger builds the charm logger used as the slog handler. Library
// packages only log at debug level, so they stay quiet unless verbose is set.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "pkgtester",
		Level:  level,
	})
}

// installLogger routes the default slog logger through a charm logger.
func installLogger(w io.Writer, verbose bool) {
	slog.SetDefault(slog.New(newLogger(w, verbose)))
}
