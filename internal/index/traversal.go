package index

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/store"
)

// Traversal visits every node of the selector's type. It answers any filter
// and is the fallback when nothing narrower applies.
type Traversal struct {
	sqlBackend
}

// NewTraversal creates a traversal over the nodes in s.
func NewTraversal(s *store.Store) *Traversal {
	return &Traversal{sqlBackend: newSQLBackend(s)}
}

// Name implements query.Index.
func (t *Traversal) Name() string { return NameTraversal }

func (t *Traversal) query(f *query.Filter) queryir.Select {
	return queryir.Select{From: f.Selector().NodeType()}
}

// Cost is the number of nodes of the selector's type. A failed count is
// reported as the largest finite cost so the traversal stays usable.
func (t *Traversal) Cost(ctx context.Context, f *query.Filter) float64 {
	n, err := t.count(ctx, t.query(f))
	if err != nil {
		return math.MaxFloat64
	}
	return float64(n)
}

// Plan implements query.Index.
func (t *Traversal) Plan(f *query.Filter) string {
	if nt := f.Selector().NodeType(); nt != "" {
		return fmt.Sprintf("traversal (type %s)", nt)
	}
	return "traversal (all nodes)"
}

// Candidates implements query.Index.
func (t *Traversal) Candidates(ctx context.Context, f *query.Filter) ([]string, error) {
	return t.paths(ctx, t.query(f))
}

// SupportsFullText implements query.Index.
func (t *Traversal) SupportsFullText() bool { return false }
