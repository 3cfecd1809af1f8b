package index

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/querysql"
	"github.com/roach88/treeq/internal/store"
)

// Index names accepted by Named.
const (
	NameFullText  = "fulltext"
	NameProperty  = "property"
	NameTraversal = "traversal"
)

// Default returns the planner's indexes in tie-break order.
func Default(s *store.Store) []query.Index {
	return []query.Index{NewFullText(s), NewProperty(s), NewTraversal(s)}
}

// Named returns the single index called name, or Default(s) when name is "".
func Named(s *store.Store, name string) ([]query.Index, error) {
	switch name {
	case "":
		return Default(s), nil
	case NameFullText:
		return []query.Index{NewFullText(s)}, nil
	case NameProperty:
		return []query.Index{NewProperty(s)}, nil
	case NameTraversal:
		return []query.Index{NewTraversal(s)}, nil
	default:
		return nil, fmt.Errorf("unknown index %q", name)
	}
}

// Select returns the cheapest index able to answer f. Ties keep the order of
// indexes. Returns nil when no index can answer.
func Select(ctx context.Context, f *query.Filter, indexes ...query.Index) query.Index {
	var best query.Index
	bestCost := math.Inf(1)
	for _, idx := range indexes {
		c := idx.Cost(ctx, f)
		if math.IsInf(c, 1) || math.IsNaN(c) {
			continue
		}
		if best == nil || c < bestCost {
			best, bestCost = idx, c
		}
	}
	return best
}

// sqlBackend runs queryir queries against the store.
type sqlBackend struct {
	store    *store.Store
	compiler *querysql.SQLCompiler
}

func newSQLBackend(s *store.Store) sqlBackend {
	return sqlBackend{store: s, compiler: querysql.NewSQLCompiler()}
}

// count returns the number of paths q yields.
func (b sqlBackend) count(ctx context.Context, q queryir.Query) (int64, error) {
	sql, params, err := b.compiler.CompileCount(q)
	if err != nil {
		return 0, err
	}
	return b.store.QueryCount(ctx, sql, params...)
}

// paths returns the sorted paths q yields.
func (b sqlBackend) paths(ctx context.Context, q queryir.Query) ([]string, error) {
	sql, params, err := b.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile candidates: %w", err)
	}
	return b.store.QueryPaths(ctx, sql, params...)
}

// notNullPredicates lists the not-null restrictions of f as predicates.
func notNullPredicates(f *query.Filter) []queryir.Predicate {
	var preds []queryir.Predicate
	for _, name := range f.NotNullProperties() {
		preds = append(preds, queryir.PropertyNotNull{Name: name})
	}
	return preds
}

// conjunction folds preds into a single predicate; nil when empty.
func conjunction(preds []queryir.Predicate) queryir.Predicate {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return queryir.And{Predicates: preds}
}
