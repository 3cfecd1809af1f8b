package compiler

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/treeq/internal/ir"
)

// CompileYAML parses YAML content and compiles it like CompileContent:
// mappings become nodes, "@type" sets the node type, and scalars and
// sequences of scalars become properties.
func CompileYAML(data []byte) ([]ContentNode, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return CompileYAMLNode(&doc)
}

// CompileYAMLNode compiles an already decoded YAML node, such as the inline
// content of a test scenario.
func CompileYAMLNode(n *yaml.Node) ([]ContentNode, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, nil
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, &CompileError{Field: "content", Message: "content must be a mapping", Line: n.Line}
	}

	var nodes []ContentNode
	if err := compileYAMLMapping(n, ir.RootPath, &nodes); err != nil {
		return nil, err
	}
	if len(nodes) > 0 && nodes[0].Path == ir.RootPath && nodes[0].Type == "" && len(nodes[0].Properties) == 0 {
		nodes = nodes[1:]
	}
	return nodes, nil
}

// compileYAMLMapping appends the node at path and then its children.
// Mapping content alternates key and value nodes.
func compileYAMLMapping(n *yaml.Node, path string, nodes *[]ContentNode) error {
	node := ContentNode{Path: path}
	idx := len(*nodes)
	*nodes = append(*nodes, node)

	type child struct {
		path string
		n    *yaml.Node
	}
	var children []child
	seen := map[string]bool{}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		label := key.Value
		fieldPath := ir.ConcatPath(path, label)
		if seen[label] {
			return &CompileError{Field: fieldPath, Message: "duplicate key", Line: key.Line}
		}
		seen[label] = true

		if label == TypeField {
			if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
				return &CompileError{Field: fieldPath, Message: "node type must be a string", Line: val.Line}
			}
			node.Type = val.Value
			continue
		}
		if err := checkLabel(label); err != nil {
			return &CompileError{Field: fieldPath, Message: err.Error(), Line: key.Line}
		}

		if val.Kind == yaml.MappingNode {
			children = append(children, child{path: fieldPath, n: val})
			continue
		}

		value, err := yamlValue(fieldPath, val)
		if err != nil {
			return err
		}
		node.Properties = append(node.Properties, ir.Property{Name: label, Value: value})
	}

	ir.SortProperties(node.Properties)
	(*nodes)[idx] = node

	for _, c := range children {
		if err := compileYAMLMapping(c.n, c.path, nodes); err != nil {
			return err
		}
	}
	return nil
}

// yamlValue converts a scalar or a sequence of scalars.
func yamlValue(field string, n *yaml.Node) (ir.IRValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return yamlScalar(field, n)
	case yaml.SequenceNode:
		arr := ir.IRArray{}
		for i, elem := range n.Content {
			elemField := fmt.Sprintf("%s[%d]", field, i)
			if elem.Kind != yaml.ScalarNode {
				return nil, &CompileError{Field: elemField, Message: "array elements must be scalars", Line: elem.Line}
			}
			v, err := yamlScalar(elemField, elem)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.AliasNode:
		return nil, &CompileError{Field: field, Message: "aliases are not supported", Line: n.Line}
	default:
		return nil, &CompileError{Field: field, Message: "unsupported value", Line: n.Line}
	}
}

// yamlScalar uses the resolved tag so that "2015" stays a string and 2015
// becomes an int.
func yamlScalar(field string, n *yaml.Node) (ir.IRValue, error) {
	switch n.Tag {
	case "!!str":
		return ir.IRString(n.Value), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, &CompileError{Field: field, Message: fmt.Sprintf("invalid int %q", n.Value), Line: n.Line}
		}
		return ir.IRInt(i), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Line: n.Line}
		}
		return ir.IRBool(b), nil
	case "!!float":
		return nil, &CompileError{Field: field, Message: "float values are forbidden - use int instead", Line: n.Line}
	case "!!null":
		return nil, &CompileError{Field: field, Message: "null values are not stored - omit the field", Line: n.Line}
	default:
		return nil, &CompileError{Field: field, Message: fmt.Sprintf("unsupported tag %s", n.Tag), Line: n.Line}
	}
}
