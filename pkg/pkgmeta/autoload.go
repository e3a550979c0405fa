// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type (
	// AutoloadRule maps one namespace to the directories it is loaded from.
	AutoloadRule struct {
		Namespace Namespace
		Paths     []string
	}

	// AutoloadMap is a PSR-4 table kept in declaration order. Order matters:
	// when two namespaces claim the same directory the first one wins, and
	// merging injects namespaces in the order the package declared them.
	AutoloadMap []AutoloadRule

	// Autoload is the "autoload-dev" section of composer.json. Only the
	// psr-4 table is consumed.
	Autoload struct {
		PSR4 AutoloadMap `json:"psr-4"`
	}
)

// Pairs returns every (namespace, path) pair, expanding namespaces that map
// to several paths, in declaration order.
func (m AutoloadMap) Pairs() []AutoloadRule {
	pairs := make([]AutoloadRule, 0, len(m))
	for _, rule := range m {
		for _, p := range rule.Paths {
			pairs = append(pairs, AutoloadRule{Namespace: rule.Namespace, Paths: []string{p}})
		}
	}
	return pairs
}

// Lookup returns the paths declared for ns, comparing namespaces without
// their trailing separators.
func (m AutoloadMap) Lookup(ns Namespace) ([]string, bool) {
	want := ns.Trim()
	for _, rule := range m {
		if rule.Namespace.Trim() == want {
			return rule.Paths, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes a JSON object of namespace -> string | [string],
// preserving key order. Composer files written by PHP encode an empty table
// as [], which is accepted as an empty map. A namespace repeated in the same
// object keeps its first declaration.
func (m *AutoloadMap) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("[]")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading psr-4 table: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("psr-4 table must be an object, got %v", tok)
	}

	var out AutoloadMap
	seen := make(map[Namespace]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading psr-4 namespace: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("psr-4 namespace must be a string, got %v", keyTok)
		}

		var paths StringList
		if err := dec.Decode(&paths); err != nil {
			return fmt.Errorf("psr-4 paths for %q: %w", key, err)
		}

		ns := Namespace(key)
		if seen[ns] {
			continue
		}
		seen[ns] = true
		out = append(out, AutoloadRule{Namespace: ns, Paths: []string(paths)})
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading psr-4 table: %w", err)
	}

	*m = out
	return nil
}

// MarshalJSON encodes the table as a JSON object in declaration order.
// Single-path namespaces are written as a string, others as a list.
func (m AutoloadMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rule := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(rule.Namespace))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if len(rule.Paths) == 1 {
			value, err = json.Marshal(rule.Paths[0])
		} else {
			paths := rule.Paths
			if paths == nil {
				paths = []string{}
			}
			value, err = json.Marshal(paths)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts both an object and the empty list PHP emits for
// an empty section.
func (a *Autoload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("[]")) {
		*a = Autoload{}
		return nil
	}

	var raw struct {
		PSR4 AutoloadMap `json:"psr-4"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.PSR4 = raw.PSR4
	return nil
}
