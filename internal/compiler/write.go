package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/treeq/internal/ir"
)

// NodeWriter stores content nodes. *store.Store implements it.
type NodeWriter interface {
	PutNode(ctx context.Context, path, nodeType string, props []ir.Property) error
}

// Write validates nodes and writes them in order. Nothing is written when
// validation fails; the first validation error is returned.
func Write(ctx context.Context, w NodeWriter, nodes []ContentNode) error {
	if errs := Validate(nodes); len(errs) > 0 {
		return errs[0]
	}
	for _, n := range nodes {
		if err := w.PutNode(ctx, n.Path, n.Type, n.Properties); err != nil {
			return fmt.Errorf("write %s: %w", n.Path, err)
		}
	}
	return nil
}
