package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/treeq/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedContent = "E100" // unsupported value passed to Validate

	// Node errors (E101-E109)
	ErrInvalidPath          = "E101" // path not absolute or not clean
	ErrDuplicatePath        = "E102" // two nodes share a path
	ErrInvalidNodeType      = "E103" // node type is not an identifier
	ErrInvalidPropertyName  = "E104" // empty name or name containing '/'
	ErrDuplicateProperty    = "E105" // property name repeated on a node
	ErrInvalidPropertyValue = "E106" // null, object or nested array value
)

// ValidationError represents a content validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// nodeTypePattern matches node type names such as "article" or "nt:file".
var nodeTypePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// Validate checks compiled content before it is written to a store.
// Returns all errors found (does not fail-fast).
// Supports ContentNode, *ContentNode and []ContentNode.
func Validate(v any) []ValidationError {
	switch c := v.(type) {
	case []ContentNode:
		return validateNodes(c)
	case ContentNode:
		return validateNodes([]ContentNode{c})
	case *ContentNode:
		return validateNodes([]ContentNode{*c})
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported content type: %T", v),
			Code:    ErrUnsupportedContent,
		}}
	}
}

// validateNodes validates a node list. Duplicate paths are reported on the
// second occurrence.
func validateNodes(nodes []ContentNode) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		// E101
		if !ir.IsAbsolute(n.Path) || ir.CleanPath(n.Path) != n.Path {
			errs = append(errs, ValidationError{
				Field:   n.Path,
				Message: fmt.Sprintf("path %q must be absolute and clean", n.Path),
				Code:    ErrInvalidPath,
			})
		}

		// E102
		if seen[n.Path] {
			errs = append(errs, ValidationError{
				Field:   n.Path,
				Message: "duplicate node path",
				Code:    ErrDuplicatePath,
			})
		}
		seen[n.Path] = true

		// E103: empty means untyped
		if n.Type != "" && !nodeTypePattern.MatchString(n.Type) {
			errs = append(errs, ValidationError{
				Field:   n.Path + "/" + TypeField,
				Message: fmt.Sprintf("invalid node type %q", n.Type),
				Code:    ErrInvalidNodeType,
			})
		}

		errs = append(errs, validateProperties(n)...)
	}

	return errs
}

// validateProperties checks names and values of one node's properties.
func validateProperties(n ContentNode) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool, len(n.Properties))

	for i, p := range n.Properties {
		field := fmt.Sprintf("%s.properties[%d]", n.Path, i)

		// E104
		if strings.TrimSpace(p.Name) == "" || strings.Contains(p.Name, "/") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid property name %q", p.Name),
				Code:    ErrInvalidPropertyName,
			})
		}

		// E105
		if names[p.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate property %q", p.Name),
				Code:    ErrDuplicateProperty,
			})
		}
		names[p.Name] = true

		// E106
		if msg := checkValue(p.Value); msg != "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("property %q: %s", p.Name, msg),
				Code:    ErrInvalidPropertyValue,
			})
		}
	}

	return errs
}

// checkValue returns why v cannot be stored, or "".
func checkValue(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "null values are not stored"
	case ir.IRObject:
		return "objects must be child nodes"
	case ir.IRArray:
		for i, elem := range val {
			switch elem.(type) {
			case ir.IRArray, ir.IRObject, ir.IRNull, nil:
				return fmt.Sprintf("array[%d] is not a scalar", i)
			}
		}
	}
	return ""
}
