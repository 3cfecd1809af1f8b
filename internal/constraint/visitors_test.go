package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// kindCounter records which visitor method each node routes to.
type kindCounter struct {
	kinds []string
}

func (k *kindCounter) VisitFullTextSearch(*FullTextSearch) bool {
	k.kinds = append(k.kinds, "fulltext")
	return true
}

func (k *kindCounter) VisitPropertyExistence(*PropertyExistence) bool {
	k.kinds = append(k.kinds, "existence")
	return true
}

func (k *kindCounter) VisitComparison(*Comparison) bool {
	k.kinds = append(k.kinds, "comparison")
	return true
}

func (k *kindCounter) VisitIn(*In) bool {
	k.kinds = append(k.kinds, "in")
	return true
}

func (k *kindCounter) VisitAnd(*And) bool {
	k.kinds = append(k.kinds, "and")
	return true
}

func (k *kindCounter) VisitOr(*Or) bool {
	k.kinds = append(k.kinds, "or")
	return false
}

func (k *kindCounter) VisitNot(*Not) bool {
	k.kinds = append(k.kinds, "not")
	return true
}

func TestAccept_RoutesToOwnKind(t *testing.T) {
	op := DynamicOperand{SelectorName: "a", Property: "x"}
	nodes := []Node{
		NewFullTextSearch("a", "", lit("x")),
		NewPropertyExistence("a", "x"),
		NewComparison(op, OpEqual, lit("x")),
		NewIn(op, lit("x")),
		NewAnd(),
		NewOr(),
		NewNot(NewPropertyExistence("a", "x")),
	}
	k := &kindCounter{}
	var results []bool
	for _, n := range nodes {
		results = append(results, n.Accept(k))
	}
	assert.Equal(t, []string{"fulltext", "existence", "comparison", "in", "and", "or", "not"}, k.kinds)
	assert.Equal(t, []bool{true, true, true, true, true, false, true}, results)
}

func TestExplain(t *testing.T) {
	n := NewAnd(
		NewFullTextSearch("a", "title", lit("go")),
		NewNot(NewOr(rankEq(1), NewPropertyExistence("a", "draft"))),
	)
	want := "AND\n" +
		"  contains(a.title, 'go')\n" +
		"  NOT\n" +
		"    OR\n" +
		"      a.rank = 1\n" +
		"      a.draft IS NOT NULL"
	assert.Equal(t, want, Explain(n))
}

func TestSelectorNames(t *testing.T) {
	n := NewOr(
		NewFullTextSearch("b", "", lit("x")),
		NewAnd(rankEq(1), NewNot(NewPropertyExistence("b", "y"))),
	)
	assert.Equal(t, []string{"b", "a"}, SelectorNames(n))
}

func TestValidateSelectors(t *testing.T) {
	n := NewAnd(rankEq(1), NewPropertyExistence("a", "title"))
	sel := query.NewSelector("a", "")
	src := query.NewSource(nil, sel)

	assert.ErrorIs(t, ValidateSelectors(n, src), ErrNotBound)

	require.NoError(t, n.Bind(src))
	assert.NoError(t, ValidateSelectors(n, src))

	other := query.NewSource(nil, query.NewSelector("a", ""))
	assert.Error(t, ValidateSelectors(n, other))
}

func TestExtractFullText(t *testing.T) {
	ft := func(text string) Node { return NewFullTextSearch("a", "", lit(text)) }
	tests := []struct {
		name string
		node func() Node
		ok   bool
	}{
		{"single", func() Node { return ft("go") }, true},
		{"conjunction with comparison", func() Node { return NewAnd(ft("go"), rankEq(1)) }, true},
		{"pure disjunction", func() Node { return NewOr(ft("go"), ft("rust")) }, true},
		{"pure disjunction in conjunction", func() Node {
			return NewAnd(NewOr(ft("go"), NewAnd(ft("rust"), ft("zig"))), rankEq(1))
		}, true},
		{"no full text", func() Node { return rankEq(1) }, false},
		{"negated", func() Node { return NewNot(ft("go")) }, false},
		{"negated next to positive", func() Node { return NewAnd(ft("go"), NewNot(ft("rust"))) }, false},
		{"mixed disjunction", func() Node { return NewOr(ft("go"), rankEq(1)) }, false},
		{"mixed disjunction nested", func() Node {
			return NewOr(NewAnd(ft("go"), rankEq(1)), ft("rust"))
		}, false},
		{"negation without full text", func() Node { return NewAnd(ft("go"), NewNot(rankEq(1))) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.node()
			sel := bind(t, n, nil)
			expr, ok, err := ExtractFullText(n, sel)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.NotNil(t, expr)
			}
		})
	}
}

func TestExtractFullText_ReportsInvalidExpressions(t *testing.T) {
	n := NewOr(NewFullTextSearch("a", "", lit("go")), NewNot(NewFullTextSearch("a", "", BindVariable{Name: "q"})))
	sel := bind(t, n, ir.IRObject{"q": ir.IRString("OR")})
	_, ok, err := ExtractFullText(n, sel)
	assert.False(t, ok)
	assert.True(t, IsInvalidExpression(err))
}

func TestExtractFullText_Expression(t *testing.T) {
	n := NewAnd(NewFullTextSearch("a", "title", lit("go")), rankEq(1), NewFullTextSearch("a", "", lit("-java")))
	sel := bind(t, n, nil)
	expr, ok, err := ExtractFullText(n, sel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `go -java`, expr.String())
	assert.Equal(t, []string{"title", ""}, fulltext.Paths(expr))
}
