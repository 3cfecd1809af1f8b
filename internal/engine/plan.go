package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/treeq/internal/constraint"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/store"
)

// Plan is a prepared query. It is immutable and safe for concurrent use:
// every Execute call evaluates rows on its own query.Row.
type Plan struct {
	text     string
	root     constraint.Node
	source   *query.Source
	selector *query.Selector
	filter   *query.Filter
	index    query.Index
	store    *store.Store
	logger   *slog.Logger
}

// Result is the outcome of one execution.
type Result struct {
	// Paths are the matching node paths, sorted.
	Paths []string

	// Index names the index that produced the candidates.
	Index string

	// Candidates is the number of candidates evaluated.
	Candidates int
}

// Text returns the constraint text the plan was prepared from.
func (p *Plan) Text() string { return p.text }

// IndexName returns the name of the chosen index.
func (p *Plan) IndexName() string { return p.index.Name() }

// Execute fetches candidates from the chosen index and keeps the ones every
// row-level constraint accepts. Cancellation is checked between candidates.
func (p *Plan) Execute(ctx context.Context) (*Result, error) {
	candidates, err := p.index.Candidates(ctx, p.filter)
	if err != nil {
		return nil, &QueryError{
			Code:    ErrCodeExecution,
			Message: fmt.Sprintf("%s index failed", p.index.Name()),
			Query:   p.text,
			Err:     err,
		}
	}

	row := query.NewRow(p.source.Bindings())
	paths := []string{}
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, &QueryError{Code: ErrCodeExecution, Message: "cancelled", Query: p.text, Err: err}
		}

		cur, err := p.store.Cursor(ctx, path)
		if errors.Is(err, store.ErrNotFound) {
			// Removed since the index listed it.
			continue
		}
		if err != nil {
			return nil, classify(p.text, "read candidate "+path, err)
		}
		row.Set(p.selector, cur)

		ok, err := p.evaluate(row)
		if err != nil {
			return nil, classify(p.text, "evaluate "+path, err)
		}
		p.logger.Debug("candidate evaluated",
			"query", p.text,
			"path", path,
			"match", ok,
		)
		if ok {
			paths = append(paths, path)
		}
	}

	p.logger.Info("query executed",
		"query", p.text,
		"index", p.index.Name(),
		"candidates", len(candidates),
		"matches", len(paths),
	)

	return &Result{Paths: paths, Index: p.index.Name(), Candidates: len(candidates)}, nil
}

// evaluate checks the row against every constraint pushed down to the
// selector. With a single selector these are exactly the conjuncts of the
// query.
func (p *Plan) evaluate(row *query.Row) (bool, error) {
	constraints := p.selector.RowConstraints()
	if len(constraints) == 0 {
		return p.root.Evaluate(row)
	}
	for _, c := range constraints {
		ok, err := c.Evaluate(row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Explain renders the plan:
//
//	query:    contains(a.title, 'go') AND a.year > 2000
//	selector: a (article)
//	index:    fulltext (go)
//	filter:   a [title is not null, year is not null, contains 'go']
//	fulltext: go
//	row constraints:
//	  contains(a.title, 'go')
//	  a.year > 2000
//	tree:
//	  AND
//	    contains(a.title, 'go') (index)
//	    a.year > 2000
func (p *Plan) Explain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "query:    %s\n", p.root)
	fmt.Fprintf(&b, "selector: %s\n", p.selector)
	fmt.Fprintf(&b, "index:    %s\n", p.index.Plan(p.filter))
	fmt.Fprintf(&b, "filter:   %s\n", p.filter)
	if expr := p.filter.FullTextConstraint(); expr != nil {
		fmt.Fprintf(&b, "fulltext: %s\n", expr)
	}
	if in := renderInMap(p.root.InMap()); in != "" {
		fmt.Fprintf(&b, "in:       %s\n", in)
	}
	b.WriteString("row constraints:\n")
	for _, c := range p.selector.RowConstraints() {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	b.WriteString("tree:\n")
	for _, line := range strings.Split(constraint.Explain(p.root), "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderInMap renders equality alternatives as "a.status IN ('x', 'y')",
// operands sorted.
func renderInMap(m map[constraint.DynamicOperand][]constraint.StaticOperand) string {
	var parts []string
	for op, values := range m {
		vals := make([]string, len(values))
		for i, v := range values {
			vals[i] = v.String()
		}
		parts = append(parts, fmt.Sprintf("%s IN (%s)", op, strings.Join(vals, ", ")))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
