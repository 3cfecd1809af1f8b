package store

import (
	"context"
	"errors"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// Cursor positions a query cursor on the node at path. The cursor reads
// other nodes lazily with ctx, so it must not outlive the execution that
// created it. Returns ErrNotFound if no node exists at path.
func (s *Store) Cursor(ctx context.Context, path string) (query.Cursor, error) {
	n, err := s.ReadNode(ctx, path)
	if err != nil {
		return nil, err
	}
	return &cursor{ctx: ctx, store: s, node: n}, nil
}

type cursor struct {
	ctx   context.Context
	store *Store
	node  *Node
}

func (c *cursor) CurrentPath() string { return c.node.Path }

func (c *cursor) CurrentProperty(name string) (ir.Property, bool) {
	return c.node.Property(name)
}

func (c *cursor) CurrentProperties() []ir.Property { return c.node.Properties }

func (c *cursor) Tree(path string) (query.Tree, bool, error) {
	if path == c.node.Path {
		return tree{c.node}, true, nil
	}
	n, err := c.store.ReadNode(c.ctx, path)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tree{n}, true, nil
}

// tree adapts a Node to query.Tree.
type tree struct {
	node *Node
}

func (t tree) Path() string { return t.node.Path }

func (t tree) Property(name string) (ir.Property, bool) { return t.node.Property(name) }

func (t tree) Properties() []ir.Property { return t.node.Properties }
