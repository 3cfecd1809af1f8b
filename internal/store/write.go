package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
)

// PutNode creates or replaces the node at path.
//
// Missing ancestors are created as untyped nodes without properties. An
// existing node keeps its id; its type and properties are replaced. Tokens
// are rebuilt only when the content hash changes, so rewriting identical
// content is cheap.
//
// Property names must be unique; values must be scalars or arrays of
// scalars and never null.
func (s *Store) PutNode(ctx context.Context, path, nodeType string, props []ir.Property) error {
	if err := checkPath(path); err != nil {
		return fmt.Errorf("put node: %w", err)
	}

	sorted := make([]ir.Property, len(props))
	copy(sorted, props)
	ir.SortProperties(sorted)
	values := make([]string, len(sorted))
	for i, p := range sorted {
		if i > 0 && sorted[i-1].Name == p.Name {
			return fmt.Errorf("put node %s: duplicate property %q", path, p.Name)
		}
		if p.Name == "" {
			return fmt.Errorf("put node %s: empty property name", path)
		}
		v, err := marshalValue(p.Name, p.Value)
		if err != nil {
			return fmt.Errorf("put node %s: %w", path, err)
		}
		values[i] = v
	}

	hash, err := ir.ContentHash(nodeType, sorted)
	if err != nil {
		return fmt.Errorf("put node %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put node: begin: %w", err)
	}
	defer tx.Rollback()

	for _, anc := range ir.Ancestors(path) {
		if err := s.insertNode(ctx, tx, anc, "", ""); err != nil {
			return fmt.Errorf("put node %s: ancestor %s: %w", path, anc, err)
		}
	}

	var current string
	err = tx.QueryRowContext(ctx, `SELECT content_hash FROM nodes WHERE path = ?`, path).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := s.insertNode(ctx, tx, path, nodeType, hash); err != nil {
			return fmt.Errorf("put node %s: %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("put node %s: read hash: %w", path, err)
	case current == hash:
		return tx.Commit()
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE nodes SET node_type = ?, content_hash = ? WHERE path = ?
		`, nodeType, hash, path); err != nil {
			return fmt.Errorf("put node %s: %w", path, err)
		}
	}

	if err := replaceContent(ctx, tx, path, sorted, values); err != nil {
		return fmt.Errorf("put node %s: %w", path, err)
	}
	return tx.Commit()
}

// insertNode adds a node row unless the path already exists. Ids are only
// drawn for rows actually inserted.
func (s *Store) insertNode(ctx context.Context, tx *sql.Tx, path, nodeType, hash string) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE path = ?`, path).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	var parent any
	if path != ir.RootPath {
		parent = ir.ParentPath(path)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes (path, id, parent, name, node_type, content_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, path, s.ids.Generate(), parent, ir.PathName(path), nodeType, hash)
	return err
}

// replaceContent rewrites the properties and tokens of a node. props must be
// sorted by name; values holds their encoded form.
func replaceContent(ctx context.Context, tx *sql.Tx, path string, props []ir.Property, values []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE node_path = ?`, path); err != nil {
		return fmt.Errorf("clear properties: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE node_path = ?`, path); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}

	for i, p := range props {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO properties (node_path, name, value, is_array) VALUES (?, ?, ?, ?)
		`, path, p.Name, values[i], p.IsArray()); err != nil {
			return fmt.Errorf("insert property %q: %w", p.Name, err)
		}

		pos := 0
		for _, text := range p.Texts() {
			for _, tok := range fulltext.Tokenize(text) {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO tokens (node_path, property, pos, token) VALUES (?, ?, ?, ?)
				`, path, p.Name, pos, tok); err != nil {
					return fmt.Errorf("insert token for %q: %w", p.Name, err)
				}
				pos++
			}
		}
	}
	return nil
}

// DeleteNode removes the node at path and its whole subtree. Deleting a
// path that does not exist is not an error. Deleting the root empties the
// store.
func (s *Store) DeleteNode(ctx context.Context, path string) error {
	if err := checkPath(path); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	var err error
	if path == ir.RootPath {
		_, err = s.db.ExecContext(ctx, `DELETE FROM nodes`)
	} else {
		// Descendants share the prefix path+"/"; '0' is the byte after '/'.
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM nodes WHERE path = ? OR (path >= ? AND path < ?)
		`, path, path+"/", path+"0")
	}
	if err != nil {
		return fmt.Errorf("delete node %s: %w", path, err)
	}
	return nil
}

// checkPath rejects paths that are not absolute and clean.
func checkPath(path string) error {
	if !ir.IsAbsolute(path) {
		return fmt.Errorf("path %q is not absolute", path)
	}
	if ir.CleanPath(path) != path {
		return fmt.Errorf("path %q is not clean (want %q)", path, ir.CleanPath(path))
	}
	return nil
}
