// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

const (
	// DeclarationFileName is the dedicated test declaration file.
	DeclarationFileName = "package-tester.json"
	// DefaultTestPath is the primary test path used when a namespace block
	// omits "path".
	DefaultTestPath = "tests"
)

const (
	// SourceDeclarationFile marks a declaration read from package-tester.json.
	SourceDeclarationFile DeclarationSource = iota
	// SourceExtra marks a declaration read from composer.json "extra.package-tester".
	SourceExtra
)

type (
	// DeclarationSource identifies which entry point a declaration came from.
	DeclarationSource int

	// Declaration is a package-authored opt-in into test discovery.
	Declaration struct {
		// Source is set by the parser, never read from JSON.
		Source DeclarationSource `json:"-"`
		Runner Runner            `json:"runner"`
		// Namespace is the single primary test path block. Nil when absent.
		Namespace *NamespaceBlock `json:"namespace"`
		// Tests is the explicit list of test entries.
		Tests []TestSpec `json:"tests"`
		// Options are pass-through test-runner flags keyed by runner option name.
		Options map[string]StringList `json:"options"`
		// DependencyPackages is an informational ordering hint.
		DependencyPackages StringList `json:"dependency-packages"`
	}

	// Runner holds runner switches. Enabled defaults to true.
	Runner struct {
		Enabled *bool `json:"enabled"`
	}

	// NamespaceBlock declares one primary test path. Namespace, when set,
	// takes precedence over the autoload-dev lookup for that path.
	NamespaceBlock struct {
		Path      string     `json:"path"`
		Namespace Namespace  `json:"namespace"`
		Option    StringList `json:"option"`
		Filter    *string    `json:"filter"`
	}

	// TestSpec is one explicit test entry. In JSON it is either a bare path
	// string or an object; both decode to this shape.
	TestSpec struct {
		Path      string     `json:"path"`
		Name      string     `json:"name"`
		Namespace Namespace  `json:"namespace"`
		Options   StringList `json:"options"`
		Filter    *string    `json:"filter"`
	}
)

// String returns a human-readable source name.
func (s DeclarationSource) String() string {
	switch s {
	case SourceDeclarationFile:
		return DeclarationFileName
	case SourceExtra:
		return "extra." + ExtraKey
	default:
		return "unknown"
	}
}

// IsEnabled reports whether the runner is enabled; absent means enabled.
func (r Runner) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// PrimaryPath returns the declared path, or DefaultTestPath when empty.
func (b *NamespaceBlock) PrimaryPath() string {
	if b.Path == "" {
		return DefaultTestPath
	}
	return b.Path
}

// UnmarshalJSON promotes a bare string to {path: string}.
func (t *TestSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var p string
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*t = TestSpec{Path: p}
		return nil
	}

	type plain TestSpec
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("test entry must be a path or an object: %w", err)
	}
	*t = TestSpec(v)
	return nil
}

// ParseDeclaration decodes a test declaration. Comments and trailing commas
// are tolerated, which lets package authors annotate package-tester.json.
// The top level must be a JSON object.
func ParseDeclaration(data []byte, source DeclarationSource) (*Declaration, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(stripped) == 0 || stripped[0] != '{' {
		return nil, &InvalidDeclarationError{Cause: errors.New("declaration must be a JSON object")}
	}

	var decl Declaration
	if err := json.Unmarshal(stripped, &decl); err != nil {
		return nil, &InvalidDeclarationError{Cause: err}
	}
	decl.Source = source
	return &decl, nil
}

// ReadDeclaration reads and decodes the package-tester.json at path.
func ReadDeclaration(path string) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	decl, err := ParseDeclaration(data, SourceDeclarationFile)
	if err != nil {
		var ide *InvalidDeclarationError
		if errors.As(err, &ide) {
			ide.Path = path
		}
		return nil, err
	}
	return decl, nil
}
