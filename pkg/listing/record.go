// Package listing defines the normalized scheme record and the pure
// functions that map heterogeneous source payloads onto it.
//
// Source APIs (data.gov.in resources, mock endpoints, hand-written JSON)
// disagree on field names. Every target attribute is therefore described
// declaratively as a Field: candidate keys in priority order plus a
// fallback. Normalize evaluates those rules against one raw record and never
// looks at its neighbours, so a collection maps one-to-one and in order.
package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a record within a result set. Sources send either strings
// or numbers; the kind is preserved so cached entries round-trip unchanged.
type ID struct {
	value   string
	numeric bool
}

// StringID returns a textual ID.
func StringID(s string) ID {
	return ID{value: s}
}

// IndexID returns the positional ID used when a source record carries none.
func IndexID(i int) ID {
	return ID{value: strconv.Itoa(i), numeric: true}
}

// String returns the ID as used in lookups and detail paths.
func (id ID) String() string {
	return id.value
}

// IsNumeric reports whether the source sent the ID as a JSON number.
func (id ID) IsNumeric() bool {
	return id.numeric
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = StringID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID{value: n.String(), numeric: true}
		return nil
	}
}

// Record is the uniform shape every scheme listing is normalized into.
type Record struct {
	ID          ID             `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	State       string         `json:"state"`
	ApplyURL    string         `json:"applyUrl,omitempty"`
	DetailsPath string         `json:"detailsUrl"`
	PostedOn    string         `json:"postedOn,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// matches reports whether the lowercased query occurs in the record's
// searchable text.
func (r Record) matches(lowerQuery string) bool {
	return containsFold(r.Title+" "+r.Description+" "+r.State, lowerQuery)
}
