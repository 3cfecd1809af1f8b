package constraint

import (
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/query"
)

// And is satisfied when every child is.
type And struct {
	children []Node
}

// NewAnd creates a conjunction. Nested conjunctions are flattened.
func NewAnd(children ...Node) *And {
	n := &And{}
	for _, c := range children {
		if a, ok := c.(*And); ok {
			n.children = append(n.children, a.children...)
			continue
		}
		n.children = append(n.children, c)
	}
	return n
}

// Children returns the conjuncts.
func (n *And) Children() []Node { return n.children }

func (n *And) Accept(v Visitor) bool { return v.VisitAnd(n) }

func (n *And) Bind(src *query.Source) error {
	for _, c := range n.children {
		if err := c.Bind(src); err != nil {
			return err
		}
	}
	return nil
}

func (n *And) Selectors() []*query.Selector {
	var out []*query.Selector
	for _, c := range n.children {
		out = appendSelectors(out, c.Selectors()...)
	}
	return out
}

func (n *And) String() string {
	return joinChildren(n.children, " AND ", func(c Node) bool {
		_, isOr := c.(*Or)
		return isOr
	})
}

func (n *And) Evaluate(row *query.Row) (bool, error) {
	for _, c := range n.children {
		ok, err := c.Evaluate(row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Restrict pushes every child's restrictions; each holds whenever the
// conjunction does.
func (n *And) Restrict(f *query.Filter) error {
	for _, c := range n.children {
		if err := c.Restrict(f); err != nil {
			return err
		}
	}
	return nil
}

func (n *And) RestrictPushDown(s *query.Selector) {
	for _, c := range n.children {
		c.RestrictPushDown(s)
	}
}

// PropertyExistenceConditions returns the union of the children's
// conditions.
func (n *And) PropertyExistenceConditions() []*PropertyExistence {
	var out []*PropertyExistence
	seen := map[string]bool{}
	for _, c := range n.children {
		for _, pe := range c.PropertyExistenceConditions() {
			if !seen[pe.Key()] {
				seen[pe.Key()] = true
				out = append(out, pe)
			}
		}
	}
	return out
}

// FullTextConstraint combines the expressions of the children that yield
// one for s.
func (n *And) FullTextConstraint(s *query.Selector) (fulltext.Expression, bool, error) {
	var exprs []fulltext.Expression
	for _, c := range n.children {
		e, ok, err := c.FullTextConstraint(s)
		if err != nil {
			return nil, false, err
		}
		if ok {
			exprs = append(exprs, e)
		}
	}
	switch len(exprs) {
	case 0:
		return nil, false, nil
	case 1:
		return exprs[0], true, nil
	}
	return fulltext.And{Exprs: exprs}, true, nil
}

// InMap merges the children's maps. When several children constrain the
// same operand the first child's alternatives are kept.
func (n *And) InMap() map[DynamicOperand][]StaticOperand {
	out := map[DynamicOperand][]StaticOperand{}
	for _, c := range n.children {
		for k, v := range c.InMap() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

// Or is satisfied when at least one child is.
type Or struct {
	children []Node
}

// NewOr creates a disjunction. Nested disjunctions are flattened.
func NewOr(children ...Node) *Or {
	n := &Or{}
	for _, c := range children {
		if o, ok := c.(*Or); ok {
			n.children = append(n.children, o.children...)
			continue
		}
		n.children = append(n.children, c)
	}
	return n
}

// Children returns the disjuncts.
func (n *Or) Children() []Node { return n.children }

func (n *Or) Accept(v Visitor) bool { return v.VisitOr(n) }

func (n *Or) Bind(src *query.Source) error {
	for _, c := range n.children {
		if err := c.Bind(src); err != nil {
			return err
		}
	}
	return nil
}

func (n *Or) Selectors() []*query.Selector {
	var out []*query.Selector
	for _, c := range n.children {
		out = appendSelectors(out, c.Selectors()...)
	}
	return out
}

func (n *Or) String() string {
	return joinChildren(n.children, " OR ", func(Node) bool { return false })
}

func (n *Or) Evaluate(row *query.Row) (bool, error) {
	for _, c := range n.children {
		ok, err := c.Evaluate(row)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Restrict pushes nothing. A filter is a conjunction, so no single
// child's restriction holds for every matching row.
func (n *Or) Restrict(*query.Filter) error { return nil }

// RestrictPushDown registers the whole disjunction when it reads only
// from s.
func (n *Or) RestrictPushDown(s *query.Selector) {
	if onlySelector(n.Selectors(), s) {
		s.RestrictSelector(n)
	}
}

// PropertyExistenceConditions returns the conditions every child implies.
func (n *Or) PropertyExistenceConditions() []*PropertyExistence {
	if len(n.children) == 0 {
		return nil
	}
	out := n.children[0].PropertyExistenceConditions()
	for _, c := range n.children[1:] {
		keys := map[string]bool{}
		for _, pe := range c.PropertyExistenceConditions() {
			keys[pe.Key()] = true
		}
		kept := out[:0:0]
		for _, pe := range out {
			if keys[pe.Key()] {
				kept = append(kept, pe)
			}
		}
		out = kept
	}
	return out
}

// FullTextConstraint is the alternation of the children's expressions,
// applicable only when every child yields one for s.
func (n *Or) FullTextConstraint(s *query.Selector) (fulltext.Expression, bool, error) {
	exprs := make([]fulltext.Expression, 0, len(n.children))
	for _, c := range n.children {
		e, ok, err := c.FullTextConstraint(s)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		return nil, false, nil
	}
	return fulltext.Or{Exprs: exprs}, true, nil
}

// InMap unions the alternatives when every child constrains the same
// single operand, as in a.x = 1 OR a.x = 2.
func (n *Or) InMap() map[DynamicOperand][]StaticOperand {
	var (
		key    DynamicOperand
		values []StaticOperand
	)
	for i, c := range n.children {
		m := c.InMap()
		if len(m) != 1 {
			return map[DynamicOperand][]StaticOperand{}
		}
		for k, v := range m {
			if i > 0 && k != key {
				return map[DynamicOperand][]StaticOperand{}
			}
			key = k
			values = append(values, v...)
		}
	}
	if values == nil {
		return map[DynamicOperand][]StaticOperand{}
	}
	return map[DynamicOperand][]StaticOperand{key: values}
}

// Not negates its child.
type Not struct {
	child Node
}

// NewNot creates a negation.
func NewNot(child Node) *Not {
	return &Not{child: child}
}

// Child returns the negated node.
func (n *Not) Child() Node { return n.child }

func (n *Not) Accept(v Visitor) bool { return v.VisitNot(n) }

func (n *Not) Bind(src *query.Source) error { return n.child.Bind(src) }

func (n *Not) Selectors() []*query.Selector { return n.child.Selectors() }

func (n *Not) String() string {
	switch n.child.(type) {
	case *And, *Or:
		return "NOT (" + n.child.String() + ")"
	}
	return "NOT " + n.child.String()
}

func (n *Not) Evaluate(row *query.Row) (bool, error) {
	ok, err := n.child.Evaluate(row)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Restrict pushes nothing: a negated condition implies no restriction the
// filter can express.
func (n *Not) Restrict(*query.Filter) error { return nil }

func (n *Not) RestrictPushDown(s *query.Selector) {
	if onlySelector(n.Selectors(), s) {
		s.RestrictSelector(n)
	}
}

func (n *Not) PropertyExistenceConditions() []*PropertyExistence { return nil }

// FullTextConstraint is never applicable: an index cannot prove the absence
// of a match.
func (n *Not) FullTextConstraint(*query.Selector) (fulltext.Expression, bool, error) {
	return nil, false, nil
}

func (n *Not) InMap() map[DynamicOperand][]StaticOperand {
	return map[DynamicOperand][]StaticOperand{}
}

func joinChildren(children []Node, sep string, paren func(Node) bool) string {
	parts := make([]string, len(children))
	for i, c := range children {
		s := c.String()
		if paren(c) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}
