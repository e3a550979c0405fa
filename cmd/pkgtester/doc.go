// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pkgtester CLI.
//
// Commands are built around an App composition root. Handlers load the
// configuration for the target project, call into the discovery, autoload
// and summary packages, and render the returned diagnostics themselves.
package cmd
