package constraint

import (
	"fmt"
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/query"
)

// Walk calls fn for n and, while fn returns true, for its descendants in
// depth-first order.
func Walk(n Node, fn func(Node) bool) {
	n.Accept(&walker{fn: fn})
}

type walker struct {
	fn func(Node) bool
}

func (w *walker) VisitFullTextSearch(n *FullTextSearch) bool { return w.fn(n) }

func (w *walker) VisitPropertyExistence(n *PropertyExistence) bool { return w.fn(n) }

func (w *walker) VisitComparison(n *Comparison) bool { return w.fn(n) }

func (w *walker) VisitIn(n *In) bool { return w.fn(n) }

func (w *walker) VisitAnd(n *And) bool { return w.children(n, n.children) }

func (w *walker) VisitOr(n *Or) bool { return w.children(n, n.children) }

func (w *walker) VisitNot(n *Not) bool { return w.children(n, []Node{n.child}) }

func (w *walker) children(n Node, children []Node) bool {
	if !w.fn(n) {
		return false
	}
	for _, c := range children {
		c.Accept(w)
	}
	return true
}

// Explain renders n as an indented tree, one node per line.
//
//	AND
//	  contains(a.title, 'go')
//	  NOT
//	    a.draft = true
func Explain(n Node) string {
	e := &explainer{}
	n.Accept(e)
	return strings.TrimSuffix(e.b.String(), "\n")
}

type explainer struct {
	b     strings.Builder
	depth int
}

func (e *explainer) line(s string) bool {
	e.b.WriteString(strings.Repeat("  ", e.depth))
	e.b.WriteString(s)
	e.b.WriteByte('\n')
	return true
}

func (e *explainer) group(label string, children []Node) bool {
	e.line(label)
	e.depth++
	for _, c := range children {
		c.Accept(e)
	}
	e.depth--
	return true
}

func (e *explainer) VisitFullTextSearch(n *FullTextSearch) bool {
	if n.selector != nil && n.selector.UsesFullTextIndex() {
		return e.line(n.String() + " (index)")
	}
	return e.line(n.String())
}

func (e *explainer) VisitPropertyExistence(n *PropertyExistence) bool { return e.line(n.String()) }

func (e *explainer) VisitComparison(n *Comparison) bool { return e.line(n.String()) }

func (e *explainer) VisitIn(n *In) bool { return e.line(n.String()) }

func (e *explainer) VisitAnd(n *And) bool { return e.group("AND", n.children) }

func (e *explainer) VisitOr(n *Or) bool { return e.group("OR", n.children) }

func (e *explainer) VisitNot(n *Not) bool { return e.group("NOT", []Node{n.child}) }

// SelectorNames returns the selector names n references, in first
// occurrence order. It works on unbound trees.
func SelectorNames(n Node) []string {
	var names []string
	add := func(name string) {
		for _, x := range names {
			if x == name {
				return
			}
		}
		names = append(names, name)
	}
	Walk(n, func(c Node) bool {
		switch c := c.(type) {
		case *FullTextSearch:
			add(c.selectorName)
		case *PropertyExistence:
			add(c.selectorName)
		case *Comparison:
			add(c.operand.SelectorName)
		case *In:
			add(c.operand.SelectorName)
		}
		return true
	})
	return names
}

// ValidateSelectors checks that every leaf of n is bound to a selector of
// src.
func ValidateSelectors(n Node, src *query.Source) error {
	v := &selectorValidator{src: src}
	n.Accept(v)
	return v.err
}

type selectorValidator struct {
	src *query.Source
	err error
}

func (v *selectorValidator) check(n Node, name string, sel *query.Selector) bool {
	if v.err != nil {
		return false
	}
	if sel == nil {
		v.err = fmt.Errorf("%s: %w", n, ErrNotBound)
		return false
	}
	for _, s := range v.src.Selectors() {
		if s == sel {
			return true
		}
	}
	v.err = fmt.Errorf("%s: selector %s belongs to another query", n, name)
	return false
}

func (v *selectorValidator) VisitFullTextSearch(n *FullTextSearch) bool {
	return v.check(n, n.selectorName, n.selector)
}

func (v *selectorValidator) VisitPropertyExistence(n *PropertyExistence) bool {
	return v.check(n, n.selectorName, n.selector)
}

func (v *selectorValidator) VisitComparison(n *Comparison) bool {
	return v.check(n, n.operand.SelectorName, n.selector)
}

func (v *selectorValidator) VisitIn(n *In) bool {
	return v.check(n, n.operand.SelectorName, n.selector)
}

func (v *selectorValidator) VisitAnd(n *And) bool { return v.all(n.children) }

func (v *selectorValidator) VisitOr(n *Or) bool { return v.all(n.children) }

func (v *selectorValidator) VisitNot(n *Not) bool { return n.child.Accept(v) }

func (v *selectorValidator) all(children []Node) bool {
	for _, c := range children {
		if !c.Accept(v) {
			return false
		}
	}
	return true
}

// ExtractFullText returns the full-text expression an index must match for
// rows of s, or ok=false when no index may answer the full-text conditions
// of s.
//
// Every contains() node on s is parsed first, so malformed search text is
// reported even when the expression cannot be extracted.
//
// A node trusts a full-text index blindly, so the index must prove every
// contains() on s for each row it returns. That holds when the contains()
// nodes sit in a conjunction, possibly below disjunctions made only of
// contains() nodes on s. Any contains() under NOT, or in a disjunction with
// other conditions, makes extraction fail.
func ExtractFullText(n Node, s *query.Selector) (expr fulltext.Expression, ok bool, err error) {
	Walk(n, func(c Node) bool {
		if err != nil {
			return false
		}
		if ft, isFT := c.(*FullTextSearch); isFT {
			_, _, err = ft.FullTextConstraint(s)
		}
		return true
	})
	if err != nil {
		return nil, false, err
	}

	cov := coverageOf(n, s)
	if !cov.has || !cov.covered {
		return nil, false, nil
	}
	return n.FullTextConstraint(s)
}

// fullTextCoverage describes how the contains() nodes on sel occur in a
// subtree.
type fullTextCoverage struct {
	sel *query.Selector

	has     bool // the subtree contains a contains() on sel
	pure    bool // the subtree is only AND/OR over contains() on sel
	covered bool // an index match implies every contains() on sel is true
}

func coverageOf(n Node, sel *query.Selector) fullTextCoverage {
	c := &fullTextCoverage{sel: sel}
	n.Accept(c)
	return *c
}

func (c *fullTextCoverage) leaf() bool {
	c.has, c.pure, c.covered = false, false, true
	return true
}

func (c *fullTextCoverage) VisitFullTextSearch(n *FullTextSearch) bool {
	mine := n.selector == c.sel
	c.has, c.pure, c.covered = mine, mine, true
	return true
}

func (c *fullTextCoverage) VisitPropertyExistence(*PropertyExistence) bool { return c.leaf() }

func (c *fullTextCoverage) VisitComparison(*Comparison) bool { return c.leaf() }

func (c *fullTextCoverage) VisitIn(*In) bool { return c.leaf() }

func (c *fullTextCoverage) VisitAnd(n *And) bool {
	c.has, c.pure, c.covered = false, len(n.children) > 0, true
	for _, child := range n.children {
		cc := coverageOf(child, c.sel)
		c.has = c.has || cc.has
		c.pure = c.pure && cc.pure
		c.covered = c.covered && cc.covered
	}
	return true
}

func (c *fullTextCoverage) VisitOr(n *Or) bool {
	c.has, c.pure = false, len(n.children) > 0
	for _, child := range n.children {
		cc := coverageOf(child, c.sel)
		c.has = c.has || cc.has
		c.pure = c.pure && cc.pure
	}
	c.covered = c.pure || !c.has
	return true
}

func (c *fullTextCoverage) VisitNot(n *Not) bool {
	cc := coverageOf(n.child, c.sel)
	c.has, c.pure, c.covered = cc.has, false, !cc.has
	return true
}
