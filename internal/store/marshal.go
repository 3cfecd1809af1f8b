package store

import (
	"fmt"

	"github.com/roach88/treeq/internal/ir"
)

// marshalValue converts a property value to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal values are stored byte-identically.
func marshalValue(name string, v ir.IRValue) (string, error) {
	switch v.(type) {
	case nil, ir.IRNull:
		return "", fmt.Errorf("property %q: null values are not stored", name)
	case ir.IRObject:
		return "", fmt.Errorf("property %q: object values must be child nodes", name)
	case ir.IRArray:
		for i, elem := range v.(ir.IRArray) {
			switch elem.(type) {
			case ir.IRArray, ir.IRObject:
				return "", fmt.Errorf("property %q: array[%d] is not a scalar", name, i)
			}
		}
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", name, err)
	}
	return string(data), nil
}

// unmarshalValue parses canonical JSON TEXT to an IRValue.
func unmarshalValue(name, data string) (ir.IRValue, error) {
	v, err := ir.UnmarshalCanonical([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	return v, nil
}
