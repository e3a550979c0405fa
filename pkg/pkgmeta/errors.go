// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMetadata is the sentinel error wrapped by InvalidMetadataError.
	ErrInvalidMetadata = errors.New("invalid package metadata")
	// ErrInvalidDeclaration is the sentinel error wrapped by InvalidDeclarationError.
	ErrInvalidDeclaration = errors.New("invalid test declaration")
)

type (
	// InvalidMetadataError is returned when a composer.json cannot be decoded.
	// It matches both ErrInvalidMetadata and its Cause with errors.Is.
	InvalidMetadataError struct {
		Path  string
		Cause error
	}

	// InvalidDeclarationError is returned when a test declaration cannot be
	// decoded. It matches both ErrInvalidDeclaration and its Cause with errors.Is.
	InvalidDeclarationError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidMetadataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid package metadata: %v", e.Cause)
	}
	return fmt.Sprintf("invalid package metadata %s: %v", e.Path, e.Cause)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *InvalidMetadataError) Unwrap() []error { return []error{ErrInvalidMetadata, e.Cause} }

// Error implements the error interface.
func (e *InvalidDeclarationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid test declaration: %v", e.Cause)
	}
	return fmt.Sprintf("invalid test declaration %s: %v", e.Path, e.Cause)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *InvalidDeclarationError) Unwrap() []error { return []error{ErrInvalidDeclaration, e.Cause} }
