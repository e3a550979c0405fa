// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import "strings"

// NamespaceSeparator separates PSR-4 namespace segments.
const NamespaceSeparator = `\`

// Namespace is a PSR-4 namespace prefix such as `Acme\Widgets\Tests\`.
// Values read from metadata keep whatever trailing separator they were
// declared with; use Trim or WithSeparator to get a canonical form.
type Namespace string

// String returns the namespace as declared.
func (n Namespace) String() string { return string(n) }

// Trim returns the namespace without trailing separators.
func (n Namespace) Trim() Namespace {
	return Namespace(strings.TrimRight(string(n), NamespaceSeparator))
}

// WithSeparator returns the namespace terminated by exactly one separator,
// the key form used by autoload tables. The empty (global) namespace stays
// empty.
func (n Namespace) WithSeparator() Namespace {
	trimmed := n.Trim()
	if trimmed == "" {
		return ""
	}
	return trimmed + NamespaceSeparator
}

// IsEmpty reports whether the namespace is the global namespace.
func (n Namespace) IsEmpty() bool { return n.Trim() == "" }
