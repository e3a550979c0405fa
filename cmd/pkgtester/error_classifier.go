// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pkgtester/pkgtester/internal/config"
	"github.com/pkgtester/pkgtester/internal/issue"
	"github.com/pkgtester/pkgtester/pkg/pkgmeta"
)

// classifyError maps a command failure to an issue catalog ID and returns a
// styled message for CLI rendering. Errors of a known class override the
// caller's fallback, and permission problems are checked first.
func classifyError(err error, fallback issue.Id, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = fallback

	switch {
	case errors.Is(err, fs.ErrPermission):
		issueID = issue.PermissionDeniedId
	case errors.Is(err, config.ErrInvalidConfig):
		issueID = issue.ConfigLoadFailedId
	case errors.Is(err, pkgmeta.ErrInvalidMetadata):
		issueID = issue.RootMetadataInvalidId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}
