package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/treeq/internal/ir"
)

// TypeField is the reserved field that sets the node type of the struct it
// appears in. It never becomes a property.
const TypeField = "@type"

// ContentNode is one node of a compiled content tree.
type ContentNode struct {
	Path       string
	Type       string
	Properties []ir.Property // Sorted by name
}

// CompileContent converts a CUE value into content nodes.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the root node "/". Each struct field becomes a child node
// named after its label; scalar and list fields become properties:
//
//	lib: {
//	  "@type": "folder"
//	  go: {
//	    "@type": "article"
//	    title:   "The Go Programming Language"
//	    year:    2015
//	    tags: ["go", "programming"]
//	  }
//	}
//
// compiles to /lib (folder) and /lib/go (article, three properties).
// Nodes are returned parents first, siblings in declaration order. The root
// is included only when it has a type or properties.
func CompileContent(v cue.Value) ([]ContentNode, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "content",
			Message: fmt.Sprintf("content must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	var nodes []ContentNode
	if err := compileNode(v, ir.RootPath, &nodes); err != nil {
		return nil, err
	}
	if len(nodes) > 0 && nodes[0].Path == ir.RootPath && nodes[0].Type == "" && len(nodes[0].Properties) == 0 {
		nodes = nodes[1:]
	}
	return nodes, nil
}

// compileNode appends the node at path and then its children.
func compileNode(v cue.Value, path string, nodes *[]ContentNode) error {
	node := ContentNode{Path: path}
	idx := len(*nodes)
	*nodes = append(*nodes, node)

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	var children []cue.Value
	var childPaths []string
	for iter.Next() {
		label := iter.Label()
		field := iter.Value()
		fieldPath := ir.ConcatPath(path, label)

		if label == TypeField {
			typ, err := field.String()
			if err != nil {
				return &CompileError{Field: fieldPath, Message: "node type must be a string", Pos: field.Pos()}
			}
			node.Type = typ
			continue
		}
		if err := checkLabel(label); err != nil {
			return &CompileError{Field: fieldPath, Message: err.Error(), Pos: field.Pos()}
		}

		if field.IncompleteKind() == cue.StructKind {
			children = append(children, field)
			childPaths = append(childPaths, fieldPath)
			continue
		}

		value, err := extractValue(fieldPath, field)
		if err != nil {
			return err
		}
		node.Properties = append(node.Properties, ir.Property{Name: label, Value: value})
	}

	ir.SortProperties(node.Properties)
	(*nodes)[idx] = node

	for i, child := range children {
		if err := compileNode(child, childPaths[i], nodes); err != nil {
			return err
		}
	}
	return nil
}

// checkLabel rejects labels that cannot name a node or property.
func checkLabel(label string) error {
	switch {
	case label == "":
		return fmt.Errorf("empty label")
	case label == "." || label == "..":
		return fmt.Errorf("label %q is reserved", label)
	case strings.Contains(label, "/"):
		return fmt.Errorf("label %q contains '/'", label)
	}
	return nil
}

// extractValue converts a concrete CUE scalar or list of scalars to an
// IRValue. Floats are forbidden - use int instead.
func extractValue(field string, v cue.Value) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.IRArray{}
		for i := 0; iter.Next(); i++ {
			elem := iter.Value()
			if k := elem.IncompleteKind(); k == cue.ListKind || k == cue.StructKind {
				return nil, &CompileError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: "array elements must be scalars",
					Pos:     elem.Pos(),
				}
			}
			val, err := extractValue(fmt.Sprintf("%s[%d]", field, i), elem)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   field,
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	case cue.NullKind:
		return nil, &CompileError{
			Field:   field,
			Message: "null values are not stored - omit the field",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
// CUE sources set Pos; YAML sources set Line.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Line    int
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
