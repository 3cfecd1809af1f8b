package index

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/store"
)

// Property returns the nodes that carry every property the filter requires
// to be not null. It cannot answer a filter without such a restriction.
type Property struct {
	sqlBackend
}

// NewProperty creates a property index over s.
func NewProperty(s *store.Store) *Property {
	return &Property{sqlBackend: newSQLBackend(s)}
}

// Name implements query.Index.
func (p *Property) Name() string { return NameProperty }

func (p *Property) query(f *query.Filter) queryir.Select {
	return queryir.Select{
		From:   f.Selector().NodeType(),
		Filter: conjunction(notNullPredicates(f)),
	}
}

// Cost implements query.Index.
func (p *Property) Cost(ctx context.Context, f *query.Filter) float64 {
	if len(f.NotNullProperties()) == 0 {
		return math.Inf(1)
	}
	n, err := p.count(ctx, p.query(f))
	if err != nil {
		return math.Inf(1)
	}
	return float64(n)
}

// Plan implements query.Index.
func (p *Property) Plan(f *query.Filter) string {
	if len(f.NotNullProperties()) == 0 {
		return "property (not applicable)"
	}
	return fmt.Sprintf("property (%s)", strings.Join(f.NotNullProperties(), ", "))
}

// Candidates implements query.Index.
func (p *Property) Candidates(ctx context.Context, f *query.Filter) ([]string, error) {
	if len(f.NotNullProperties()) == 0 {
		return nil, fmt.Errorf("property index: filter %s has no not-null restriction", f)
	}
	return p.paths(ctx, p.query(f))
}

// SupportsFullText implements query.Index.
func (p *Property) SupportsFullText() bool { return false }
