package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/queryir"
	"github.com/roach88/treeq/internal/store"
)

// FullText answers full-text constraints from the token table.
//
// It only answers a filter carrying a full-text constraint whose terms all
// address the selector's own node: either one property or all of them.
// Candidates are narrowed with the tokens the expression needs, then each
// is matched against the expression over its stored tokens. A node returned
// by Candidates therefore satisfies the constraint, which is what lets
// constraint nodes skip the text match for this index.
type FullText struct {
	sqlBackend
}

// NewFullText creates a full-text index over s.
func NewFullText(s *store.Store) *FullText {
	return &FullText{sqlBackend: newSQLBackend(s)}
}

// Name implements query.Index.
func (x *FullText) Name() string { return NameFullText }

// query builds the candidate query for f. ok is false when the index cannot
// answer f.
func (x *FullText) query(f *query.Filter) (queryir.Select, bool) {
	expr := f.FullTextConstraint()
	if expr == nil {
		return queryir.Select{}, false
	}
	for _, p := range fulltext.Paths(expr) {
		if strings.Contains(p, "/") {
			return queryir.Select{}, false
		}
	}
	pred, ok := tokenPredicate(expr)
	if !ok {
		return queryir.Select{}, false
	}
	q := queryir.Select{
		From:   f.Selector().NodeType(),
		Filter: conjunction(append(notNullPredicates(f), pred)),
	}
	if !queryir.Validate(q).IsPrunable {
		return queryir.Select{}, false
	}
	return q, true
}

// tokenPredicate translates an expression into the token lookups every
// match must satisfy. ok is false when the expression cannot narrow
// candidates, as with negations.
func tokenPredicate(expr fulltext.Expression) (queryir.Predicate, bool) {
	switch e := expr.(type) {
	case fulltext.Term:
		return runPredicate(e.Path, e.Text, e.Prefix)
	case fulltext.Phrase:
		return runPredicate(e.Path, e.Text, false)
	case fulltext.Not:
		return nil, false
	case fulltext.And:
		var preds []queryir.Predicate
		for _, c := range e.Exprs {
			if p, ok := tokenPredicate(c); ok {
				preds = append(preds, p)
			}
		}
		if len(preds) == 0 {
			return nil, false
		}
		return conjunction(preds), true
	case fulltext.Or:
		if len(e.Exprs) == 0 {
			return nil, false
		}
		preds := make([]queryir.Predicate, 0, len(e.Exprs))
		for _, c := range e.Exprs {
			p, ok := tokenPredicate(c)
			if !ok {
				return nil, false
			}
			preds = append(preds, p)
		}
		if len(preds) == 1 {
			return preds[0], true
		}
		return queryir.Or{Predicates: preds}, true
	}
	return nil, false
}

// runPredicate requires every token of text in the property at path; an
// empty path means any property.
func runPredicate(path, text string, prefix bool) (queryir.Predicate, bool) {
	toks := fulltext.Tokenize(text)
	if len(toks) == 0 {
		return nil, false
	}
	preds := make([]queryir.Predicate, 0, len(toks))
	for i, tok := range toks {
		if prefix && i == len(toks)-1 {
			preds = append(preds, queryir.HasTokenPrefix{Property: path, Prefix: tok})
			continue
		}
		preds = append(preds, queryir.HasToken{Property: path, Token: tok})
	}
	return conjunction(preds), true
}

// Cost implements query.Index.
func (x *FullText) Cost(ctx context.Context, f *query.Filter) float64 {
	q, ok := x.query(f)
	if !ok {
		return math.Inf(1)
	}
	n, err := x.count(ctx, q)
	if err != nil {
		return math.Inf(1)
	}
	return float64(n)
}

// Plan implements query.Index.
func (x *FullText) Plan(f *query.Filter) string {
	if _, ok := x.query(f); !ok {
		return "fulltext (not applicable)"
	}
	return fmt.Sprintf("fulltext (%s)", f.FullTextConstraint())
}

// Candidates implements query.Index. Every returned path matches the
// filter's full-text constraint.
func (x *FullText) Candidates(ctx context.Context, f *query.Filter) ([]string, error) {
	q, ok := x.query(f)
	if !ok {
		return nil, fmt.Errorf("fulltext index cannot answer filter %s", f)
	}
	paths, err := x.paths(ctx, q)
	if err != nil {
		return nil, err
	}

	expr := f.FullTextConstraint()
	out := paths[:0]
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		toks, err := x.store.Tokens(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("fulltext index: %w", err)
		}
		if expr.MatchTokens(tokenLookup(toks)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// tokenLookup resolves expression paths against the tokens of one node. The
// empty path yields the tokens of every property in name order, which is
// the token stream of the node's properties joined as one text.
func tokenLookup(byProp map[string][]string) func(path string) []string {
	return func(path string) []string {
		if path != "" {
			return byProp[path]
		}
		names := make([]string, 0, len(byProp))
		for name := range byProp {
			names = append(names, name)
		}
		sort.Strings(names)
		var all []string
		for _, name := range names {
			all = append(all, byProp[name]...)
		}
		return all
	}
}

// SupportsFullText implements query.Index.
func (x *FullText) SupportsFullText() bool { return true }
