// Package envelope normalises backend response bodies that may or may not
// be wrapped in a {"data": ...} envelope and/or a named field.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const dataField = "data"

// Collection extracts an ordered sequence of T from raw. Accepted shapes:
//
//	[ ... ]
//	{"data": [ ... ]}
//	{"<field>": [ ... ]}
//	{"data": {"<field>": [ ... ]}}
//
// An empty or null body yields an empty slice.
func Collection[T any](raw json.RawMessage, field string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	switch raw[0] {
	case '[':
		out := make([]T, 0)
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s collection: %w", field, err)
		}
		return out, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode %s envelope: %w", field, err)
		}
		if inner, ok := obj[field]; ok {
			return Collection[T](inner, field)
		}
		if inner, ok := obj[dataField]; ok {
			return Collection[T](inner, field)
		}
		return nil, fmt.Errorf("response has no %q collection", field)
	default:
		return nil, fmt.Errorf("unexpected %s collection body", field)
	}
}

// Entity extracts a single T from raw. Accepted shapes are the bare
// object, {"data": obj}, {"<field>": obj} and {"data": {"<field>": obj}}.
func Entity[T any](raw json.RawMessage, field string) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("response has no %q object", field)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", field, err)
	}
	if inner, ok := obj[field]; ok {
		return Entity[T](inner, field)
	}
	if inner, ok := obj[dataField]; ok {
		return Entity[T](inner, field)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	return &out, nil
}
