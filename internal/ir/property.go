package ir

import (
	"sort"
	"strconv"
	"strings"
)

// Property is a named value on a content node.
type Property struct {
	Name  string
	Value IRValue
}

// IsArray reports whether the property is multi-valued.
func (p Property) IsArray() bool {
	_, ok := p.Value.(IRArray)
	return ok
}

// Texts returns the string form of every value the property holds: one entry
// for a scalar, one per element for an array.
func (p Property) Texts() []string {
	return Texts(p.Value)
}

// Texts flattens v into its string forms.
func Texts(v IRValue) []string {
	switch val := v.(type) {
	case IRArray:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			out = append(out, Texts(elem)...)
		}
		return out
	case nil, IRNull:
		return nil
	default:
		return []string{Text(val)}
	}
}

// Text renders a scalar as the string a full-text search sees.
// Objects render as their canonical JSON.
func Text(v IRValue) string {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRBool:
		return strconv.FormatBool(bool(val))
	case IRArray:
		return strings.Join(Texts(val), " ")
	case IRObject:
		b, err := MarshalCanonical(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// Compare orders two scalars. Integers compare numerically and booleans
// false < true; any other pairing compares the Text forms, so a string literal
// can be compared against an integer property ('5' = 5).
func Compare(a, b IRValue) int {
	if ai, ok := a.(IRInt); ok {
		if bi, ok := b.(IRInt); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}
	if ab, ok := a.(IRBool); ok {
		if bb, ok := b.(IRBool); ok {
			switch {
			case ab == bb:
				return 0
			case !bool(ab):
				return -1
			}
			return 1
		}
	}
	return strings.Compare(Text(a), Text(b))
}

// SortProperties orders properties by name for deterministic iteration.
func SortProperties(props []Property) {
	sort.Slice(props, func(i, j int) bool {
		return props[i].Name < props[j].Name
	})
}
