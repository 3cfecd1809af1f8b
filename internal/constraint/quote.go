package constraint

import (
	"strings"
	"unicode"
)

// keywords cannot be written as bare identifiers.
var keywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IN": true, "IS": true,
	"NULL": true, "LIKE": true, "TRUE": true, "FALSE": true, "CONTAINS": true,
}

// IsBareIdent reports whether name can be written without brackets.
func IsBareIdent(name string) bool {
	if name == "" || keywords[strings.ToUpper(name)] {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == ':' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// quoteIdent renders an identifier, bracketing it when needed. A ']' inside
// brackets is doubled.
func quoteIdent(name string) string {
	if IsBareIdent(name) {
		return name
	}
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// quotePath renders a property path segment by segment. '*' stays bare.
func quotePath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s != "*" {
			segs[i] = quoteIdent(s)
		}
	}
	return strings.Join(segs, "/")
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
