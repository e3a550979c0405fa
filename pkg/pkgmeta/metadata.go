// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	// MetadataFileName is the package metadata file read from every package root.
	MetadataFileName = "composer.json"
	// ExtraKey is the key under "extra" that carries an inline test declaration.
	ExtraKey = "package-tester"
	// DefaultVersion is reported for packages that declare no version.
	DefaultVersion = "dev"
)

// Metadata is the subset of composer.json consumed by discovery.
type Metadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	AutoloadDev Autoload `json:"autoload-dev"`
	// Extra holds the raw "extra" section, keyed by plugin name.
	Extra map[string]json.RawMessage `json:"-"`
}

// ParseMetadata decodes composer.json content. Missing versions default to
// DefaultVersion. A non-object "extra" section is ignored rather than
// rejected, since other plugins own its shape.
func ParseMetadata(data []byte) (*Metadata, error) {
	var raw struct {
		Name        string          `json:"name"`
		Version     string          `json:"version"`
		AutoloadDev Autoload        `json:"autoload-dev"`
		Extra       json.RawMessage `json:"extra"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidMetadataError{Cause: err}
	}

	meta := &Metadata{
		Name:        raw.Name,
		Version:     raw.Version,
		AutoloadDev: raw.AutoloadDev,
	}
	if meta.Version == "" {
		meta.Version = DefaultVersion
	}

	extra := bytes.TrimSpace(raw.Extra)
	if len(extra) > 0 && extra[0] == '{' {
		if err := json.Unmarshal(extra, &meta.Extra); err != nil {
			return nil, &InvalidMetadataError{Cause: fmt.Errorf("extra: %w", err)}
		}
	}

	return meta, nil
}

// ReadMetadata reads and decodes the composer.json at path.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	meta, err := ParseMetadata(data)
	if err != nil {
		var ime *InvalidMetadataError
		if errors.As(err, &ime) {
			ime.Path = path
		}
		return nil, err
	}
	return meta, nil
}

// ExtraDeclaration returns the inline test declaration from
// "extra.package-tester". The second result is false when the package
// carries no such block (or carries JSON null).
func (m *Metadata) ExtraDeclaration() (*Declaration, bool, error) {
	raw, ok := m.Extra[ExtraKey]
	if !ok {
		return nil, false, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}

	decl, err := ParseDeclaration(raw, SourceExtra)
	if err != nil {
		return nil, false, err
	}
	return decl, true, nil
}
