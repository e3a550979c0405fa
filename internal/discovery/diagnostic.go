// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityInfo marks advisory events (package discovered, duplicate skipped).
	SeverityInfo Severity = "info"
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
)

const (
	// CodePackageDiscovered is emitted once per package added to a Registry.
	CodePackageDiscovered = "package_discovered"
	// CodeDuplicatePackage is emitted when a later directory declares a package
	// name that is already registered.
	CodeDuplicatePackage = "duplicate_package_skipped"
	// CodeRunnerDisabled is emitted for packages whose declaration disables the runner.
	CodeRunnerDisabled = "runner_disabled"
	// CodeTestPathMissing is emitted for declared test paths that are not directories.
	CodeTestPathMissing = "test_path_missing"
	// CodeMetadataInvalid is emitted when composer.json cannot be decoded.
	CodeMetadataInvalid = "metadata_invalid"
	// CodeDeclarationInvalid is emitted when a test declaration cannot be decoded.
	CodeDeclarationInvalid = "declaration_invalid"
	// CodeNoTestEntries is emitted when a qualifying package resolves no test entries.
	CodeNoTestEntries = "no_test_entries"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery event that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "test_path_missing").
		Code string
		// Message is the human-readable description.
		Message string
		// Package is the package name involved (optional).
		Package string
		// Path is the file or directory associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Warnings returns the subset of diags with SeverityWarning.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
