package testutil

import (
	"sort"
	"sync/atomic"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// MemTree is an in-memory content tree for tests. It records how many
// property reads cursors perform, so tests can assert that an evaluation
// did not touch content.
//
// Build the tree before sharing it; Put is not synchronized. Reads are safe
// for concurrent use.
type MemTree struct {
	nodes map[string]*MemNode
	reads atomic.Int64
}

// MemNode is one node of a MemTree.
type MemNode struct {
	path  string
	props map[string]ir.Property
	tree  *MemTree
}

// NewMemTree creates a tree holding only the root.
func NewMemTree() *MemTree {
	t := &MemTree{nodes: map[string]*MemNode{}}
	t.Put(ir.RootPath)
	return t
}

// Put creates or replaces the node at path. Missing ancestors are created
// without properties.
func (t *MemTree) Put(path string, props ...ir.Property) *MemTree {
	for _, a := range ir.Ancestors(path) {
		if _, ok := t.nodes[a]; !ok {
			t.nodes[a] = &MemNode{path: a, props: map[string]ir.Property{}, tree: t}
		}
	}
	n := &MemNode{path: path, props: map[string]ir.Property{}, tree: t}
	for _, p := range props {
		n.props[p.Name] = p
	}
	t.nodes[path] = n
	return t
}

// Reads returns the number of property reads since the last ResetReads.
func (t *MemTree) Reads() int64 { return t.reads.Load() }

// ResetReads zeroes the read counter.
func (t *MemTree) ResetReads() { t.reads.Store(0) }

// Paths returns every node path, sorted.
func (t *MemTree) Paths() []string {
	out := make([]string, 0, len(t.nodes))
	for p := range t.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Cursor returns a cursor positioned on path. It panics when the node does
// not exist, which in a test is a fixture mistake.
func (t *MemTree) Cursor(path string) query.Cursor {
	n, ok := t.nodes[path]
	if !ok {
		panic("testutil: no node at " + path)
	}
	return &memCursor{node: n}
}

// Row returns a row positioned on path for sel.
func (t *MemTree) Row(sel *query.Selector, path string, bindings ir.IRObject) *query.Row {
	row := query.NewRow(bindings)
	row.Set(sel, t.Cursor(path))
	return row
}

func (n *MemNode) Path() string { return n.path }

func (n *MemNode) Property(name string) (ir.Property, bool) {
	n.tree.reads.Add(1)
	p, ok := n.props[name]
	return p, ok
}

func (n *MemNode) Properties() []ir.Property {
	n.tree.reads.Add(int64(len(n.props)))
	out := make([]ir.Property, 0, len(n.props))
	for _, p := range n.props {
		out = append(out, p)
	}
	ir.SortProperties(out)
	return out
}

type memCursor struct {
	node *MemNode
}

func (c *memCursor) CurrentPath() string { return c.node.path }

func (c *memCursor) CurrentProperty(name string) (ir.Property, bool) {
	return c.node.Property(name)
}

func (c *memCursor) CurrentProperties() []ir.Property {
	return c.node.Properties()
}

func (c *memCursor) Tree(path string) (query.Tree, bool, error) {
	n, ok := c.node.tree.nodes[path]
	if !ok {
		return nil, false, nil
	}
	return n, true, nil
}

// Str builds a string property.
func Str(name, value string) ir.Property {
	return ir.Property{Name: name, Value: ir.IRString(value)}
}

// Int builds an integer property.
func Int(name string, value int64) ir.Property {
	return ir.Property{Name: name, Value: ir.IRInt(value)}
}

// Bool builds a boolean property.
func Bool(name string, value bool) ir.Property {
	return ir.Property{Name: name, Value: ir.IRBool(value)}
}

// Strs builds a multi-valued string property.
func Strs(name string, values ...string) ir.Property {
	return ir.Property{Name: name, Value: ir.Strings(values...)}
}
