package query

import "github.com/roach88/treeq/internal/ir"

// Cursor exposes the node a selector is currently positioned on.
//
// Implementations may block on storage. Property lookups on the current node
// never fail; Tree may, since it reaches other nodes.
type Cursor interface {
	// CurrentPath is the absolute path of the current node.
	CurrentPath() string

	// CurrentProperty returns a property of the current node.
	CurrentProperty(name string) (ir.Property, bool)

	// CurrentProperties returns every property of the current node, sorted
	// by name.
	CurrentProperties() []ir.Property

	// Tree returns the node at an absolute path. ok is false when no such
	// node exists.
	Tree(path string) (t Tree, ok bool, err error)
}

// Tree is a read-only view of one node.
type Tree interface {
	Path() string
	Property(name string) (ir.Property, bool)
	Properties() []ir.Property
}
