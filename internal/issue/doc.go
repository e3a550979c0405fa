// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages that the CLI renders when a command fails for a known reason.
package issue
