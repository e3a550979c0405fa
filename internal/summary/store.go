// SPDX-License-Identifier: MPL-2.0

// Package summary persists the flattened discovery result so that later
// build steps can read which packages contributed test namespaces.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkgtester/pkgtester/internal/discovery"
)

// DefaultPath is the summary location relative to the root project.
const DefaultPath = "vendor/composer/package-tester.json"

// ErrCorruptSummary is returned by Load when the file is not a valid summary.
var ErrCorruptSummary = errors.New("corrupt discovery summary")

// Store reads and writes a discovery summary file.
type Store struct {
	Path string
}

// NewStore returns a Store for the summary file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Save writes s to the store, creating parent directories as needed. The
// file is replaced atomically through a temp file in the same directory.
func (st *Store) Save(s discovery.Summary) error {
	if s == nil {
		s = discovery.Summary{}
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(st.Path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating summary directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".package-tester-*.json")
	if err != nil {
		return fmt.Errorf("creating temp summary: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp summary: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp summary: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting summary permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), st.Path); err != nil {
		return fmt.Errorf("replacing summary: %w", err)
	}
	renamed = true
	return nil
}

// Load reads the stored summary. A missing file yields an empty summary.
func (st *Store) Load() (discovery.Summary, error) {
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return discovery.Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}

	var s discovery.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptSummary, st.Path, err)
	}
	if s == nil {
		s = discovery.Summary{}
	}
	return s, nil
}

// Clear removes the stored summary. Clearing a missing summary is a no-op.
func (st *Store) Clear() error {
	err := os.Remove(st.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing summary: %w", err)
	}
	return nil
}
