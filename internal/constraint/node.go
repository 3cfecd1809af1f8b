package constraint

import (
	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/query"
)

// Node is one condition of a compiled query.
//
// The implementations are FullTextSearch, PropertyExistence, Comparison,
// In, And, Or and Not. Every operation except Bind requires a bound node.
type Node interface {
	// Accept calls the visitor method for the node's own kind and returns
	// its result. Composite nodes do not descend; visitors recurse by
	// calling Accept on the children they care about.
	Accept(v Visitor) bool

	// Evaluate reports whether the current row satisfies the node. This is
	// the authoritative answer. A missing property or subtree is false,
	// not an error.
	Evaluate(row *query.Row) (bool, error)

	// Restrict pushes conditions implied by the node into f. Whatever it
	// pushes holds on every row for which Evaluate is true; it may push
	// nothing.
	Restrict(f *query.Filter) error

	// RestrictPushDown registers the node on s for row-level evaluation if
	// the node reads from s.
	RestrictPushDown(s *query.Selector)

	// Selectors returns the selectors the node reads from.
	Selectors() []*query.Selector

	// PropertyExistenceConditions returns the "property must exist"
	// preconditions the node implies.
	PropertyExistenceConditions() []*PropertyExistence

	// FullTextConstraint returns the full-text expression the node imposes
	// on rows of s. ok is false when the node is not a full-text condition
	// for s. A malformed search text is an *InvalidExpressionError.
	FullTextConstraint(s *query.Selector) (expr fulltext.Expression, ok bool, err error)

	// InMap returns equality alternatives per operand, for IN-list
	// optimization. Nodes that contribute none return an empty map.
	InMap() map[DynamicOperand][]StaticOperand

	// Bind resolves selector names against src. Called exactly once.
	Bind(src *query.Source) error

	// String renders the node in query syntax. Parsing the result yields
	// an equal node.
	String() string
}

// Visitor has one method per node kind. The bool result is returned by
// Accept; its meaning is up to the visitor.
type Visitor interface {
	VisitFullTextSearch(n *FullTextSearch) bool
	VisitPropertyExistence(n *PropertyExistence) bool
	VisitComparison(n *Comparison) bool
	VisitIn(n *In) bool
	VisitAnd(n *And) bool
	VisitOr(n *Or) bool
	VisitNot(n *Not) bool
}

// containsSelector reports whether sels includes s.
func containsSelector(sels []*query.Selector, s *query.Selector) bool {
	for _, x := range sels {
		if x == s {
			return true
		}
	}
	return false
}

// onlySelector reports whether every selector in sels is s.
func onlySelector(sels []*query.Selector, s *query.Selector) bool {
	if len(sels) == 0 {
		return false
	}
	for _, x := range sels {
		if x != s {
			return false
		}
	}
	return true
}

// appendSelectors appends the selectors of src not yet in dst.
func appendSelectors(dst []*query.Selector, src ...*query.Selector) []*query.Selector {
	for _, s := range src {
		if s != nil && !containsSelector(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

func selectorsOf(s *query.Selector) []*query.Selector {
	if s == nil {
		return nil
	}
	return []*query.Selector{s}
}
