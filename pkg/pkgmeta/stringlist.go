// SPDX-License-Identifier: MPL-2.0

package pkgmeta

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringList decodes from either a JSON string or a JSON list of strings.
// A JSON null decodes to an empty list.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("expected a list of strings: %w", err)
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("expected a string or a list of strings, got %s", data)
	}
}
