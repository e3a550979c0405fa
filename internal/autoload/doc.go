// SPDX-License-Identifier: MPL-2.0

// Package autoload merges the PSR-4 test namespaces of discovered packages
// into the root project's autoload-dev table.
//
// Merging is first-wins: a namespace already present in the root table is
// never overwritten, which makes repeated merges idempotent. Every processed
// (namespace, path) pair produces a Diagnostic; directories missing on disk
// are reported as warnings and skipped.
package autoload
