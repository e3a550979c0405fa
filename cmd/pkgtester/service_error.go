// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkgtester/pkgtester/internal/issue"
)

// ServiceError carries rendering hints for a failure the CLI reports itself.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (never nil).
	Err error
	// IssueID selects the catalog page rendered below the message. Zero
	// renders none.
	IssueID issue.Id
	// StyledMessage is pre-rendered error text.
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message and then the catalog page,
// rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, stylePath string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if entry := issue.Get(svcErr.IssueID); entry != nil {
		rendered, err := entry.Render(stylePath)
		if err != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", err)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// formatErrorForDisplay uses ActionableError.Format when available so
// suggestions (and with verbose, the cause chain) are shown.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// serviceErrorFor wraps err with the catalog page matching its class.
func serviceErrorFor(err error, fallback issue.Id, verbose bool) *ServiceError {
	issueID, styled := classifyError(err, fallback, verbose)
	return newServiceError(err, issueID, styled)
}
