// SPDX-License-Identifier: MPL-2.0

// Package discovery finds dependency packages that declare test suites and
// describes where those suites live.
//
// Discovery is best-effort by design: a package with missing or malformed
// metadata is excluded, never reported as a failure, so one broken package
// cannot abort the scan of the whole tree. Everything a caller may want to
// surface is returned as structured Diagnostic values instead of being
// written to stderr.
//
// File organization:
//   - analyzer.go: Analyzer (one package root -> PackageDescriptor)
//   - layout.go: conventional test directory detection
//   - namespace.go: NamespaceResolver (test path -> PSR-4 namespace)
//   - scanner.go: Scanner (vendor/<group>/<package> walk -> Registry)
//   - registry.go: Registry, PackageDescriptor, TestEntry and the flattened summary
//   - diagnostic.go: Diagnostic types and codes
package discovery
