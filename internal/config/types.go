// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkgtester/pkgtester/internal/summary"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultVendorDir is the dependency tree location relative to the root project.
	DefaultVendorDir = "vendor"
	// DefaultDebounce is the quiet period the watcher waits before re-running.
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFileName is the sentinel wrapped by InvalidFileNameError.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidFileNameError is returned for a per-package file name that is
	// empty or contains a path separator.
	InvalidFileNameError struct {
		Field string
		Value string
	}

	// InvalidConfigError collects every field-level validation error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// VendorDir is the dependency tree, relative to the root project.
		VendorDir string `json:"vendor_dir" mapstructure:"vendor_dir"`
		// MetadataFile is the package metadata file name.
		MetadataFile string `json:"metadata_file" mapstructure:"metadata_file"`
		// DeclarationFile is the dedicated test declaration file name.
		DeclarationFile string `json:"declaration_file" mapstructure:"declaration_file"`
		// SummaryFile is where the discovery summary is saved, relative to the root project.
		SummaryFile string `json:"summary_file" mapstructure:"summary_file"`
		// IgnoreDirs extends the built-in list of non-suite directory names.
		IgnoreDirs []string    `json:"ignore_dirs" mapstructure:"ignore_dirs"`
		UI         UIConfig    `json:"ui" mapstructure:"ui"`
		Watch      WatchConfig `json:"watch" mapstructure:"watch"`

		// Source is the config file the values were read from, empty when
		// only defaults and environment applied.
		Source string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		VendorDir:       DefaultVendorDir,
		MetadataFile:    pkgmeta.MetadataFileName,
		DeclarationFile: pkgmeta.DeclarationFileName,
		SummaryFile:     summary.DefaultPath,
		IgnoreDirs:      []string{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (cs ColorScheme) String() string { return string(cs) }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("%s: invalid file name %q: must be a plain, non-empty file name", e.Field, e.Value)
}

func (e *InvalidFileNameError) Unwrap() error { return ErrInvalidFileName }

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks constraints that hold regardless of where a value came
// from; environment overrides bypass the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.VendorDir) == "" {
		errs = append(errs, errors.New("vendor_dir: must not be empty"))
	}
	if strings.TrimSpace(c.SummaryFile) == "" {
		errs = append(errs, errors.New("summary_file: must not be empty"))
	}
	errs = append(errs, validateFileName("metadata_file", c.MetadataFile)...)
	errs = append(errs, validateFileName("declaration_file", c.DeclarationFile)...)
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must be positive, got %s", c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func validateFileName(field, name string) []error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return []error{&InvalidFileNameError{Field: field, Value: name}}
	}
	return nil
}
