package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/treeq/internal/ir"
)

// Node is one stored node with its properties.
type Node struct {
	ID          string
	Path        string
	Parent      string // "" for the root
	Name        string
	Type        string
	ContentHash string
	Properties  []ir.Property // sorted by name
}

// Property returns the named property.
func (n *Node) Property(name string) (ir.Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return ir.Property{}, false
}

// ReadNode returns the node at path with its properties.
// Returns ErrNotFound if no node exists there.
func (s *Store) ReadNode(ctx context.Context, path string) (*Node, error) {
	var n Node
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, parent, name, node_type, content_hash
		FROM nodes
		WHERE path = ?
	`, path).Scan(&n.ID, &n.Path, &parent, &n.Name, &n.Type, &n.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read node %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read node %s: %w", path, err)
	}
	n.Parent = parent.String

	props, err := s.readProperties(ctx, path)
	if err != nil {
		return nil, err
	}
	n.Properties = props
	return &n, nil
}

// readProperties returns the properties of a node sorted by name.
func (s *Store) readProperties(ctx context.Context, path string) ([]ir.Property, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value
		FROM properties
		WHERE node_path = ?
		ORDER BY name COLLATE BINARY ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	props := []ir.Property{}
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		v, err := unmarshalValue(name, data)
		if err != nil {
			return nil, err
		}
		props = append(props, ir.Property{Name: name, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return props, nil
}

// Children returns the paths of the direct children of path, sorted.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	return s.QueryPaths(ctx, `
		SELECT path FROM nodes
		WHERE parent = ?
		ORDER BY path COLLATE BINARY ASC
	`, path)
}

// AllPaths returns every node path of a type, sorted. An empty nodeType
// returns every node.
func (s *Store) AllPaths(ctx context.Context, nodeType string) ([]string, error) {
	if nodeType == "" {
		return s.QueryPaths(ctx, `SELECT path FROM nodes ORDER BY path COLLATE BINARY ASC`)
	}
	return s.QueryPaths(ctx, `
		SELECT path FROM nodes
		WHERE node_type = ?
		ORDER BY path COLLATE BINARY ASC
	`, nodeType)
}

// Tokens returns the indexed search tokens of a node by property name, each
// list in text order.
func (s *Store) Tokens(ctx context.Context, path string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property, token
		FROM tokens
		WHERE node_path = ?
		ORDER BY property COLLATE BINARY ASC, pos ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var prop, tok string
		if err := rows.Scan(&prop, &tok); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out[prop] = append(out[prop], tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return out, nil
}

// QueryPaths runs a query whose single column is a node path and collects
// the results. Returns an empty slice (not nil) when nothing matches.
func (s *Store) QueryPaths(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

// QueryCount runs a query returning a single integer.
func (s *Store) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return n, nil
}
