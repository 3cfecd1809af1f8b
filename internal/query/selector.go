package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/treeq/internal/ir"
)

// Index produces candidate node paths for a selector.
//
// Indexes are consulted during planning (Cost, Plan) and execution
// (Candidates). They are shared by all executions and must be safe for
// concurrent use.
type Index interface {
	// Name identifies the index in plans and logs.
	Name() string

	// Cost estimates the number of candidates the index would return for f.
	// math.Inf(1) means the index cannot answer f.
	Cost(ctx context.Context, f *Filter) float64

	// Plan describes how the index would answer f.
	Plan(f *Filter) string

	// Candidates returns the paths of nodes that may satisfy f, sorted.
	Candidates(ctx context.Context, f *Filter) ([]string, error)

	// SupportsFullText reports whether every candidate the index returns is
	// already proven to satisfy the filter's full-text constraint.
	SupportsFullText() bool
}

// RowConstraint is a predicate that must be checked on every candidate row
// of a selector. Constraint nodes satisfy it.
type RowConstraint interface {
	Evaluate(row *Row) (bool, error)
	String() string
}

// Selector is a named alias for one node source within a compiled query.
type Selector struct {
	name        string
	nodeType    string
	index       Index
	constraints []RowConstraint
}

// NewSelector creates a selector over nodes of nodeType. An empty nodeType
// selects nodes of any type.
func NewSelector(name, nodeType string) *Selector {
	return &Selector{name: name, nodeType: nodeType}
}

// Name returns the selector alias.
func (s *Selector) Name() string { return s.name }

// NodeType returns the node type the selector ranges over.
func (s *Selector) NodeType() string { return s.nodeType }

// Index returns the index chosen during planning, or nil.
func (s *Selector) Index() Index { return s.index }

// SetIndex records the chosen index. Called once during planning.
func (s *Selector) SetIndex(idx Index) { s.index = idx }

// UsesFullTextIndex reports whether the chosen index performs full-text
// matching itself.
func (s *Selector) UsesFullTextIndex() bool {
	return s.index != nil && s.index.SupportsFullText()
}

// RestrictSelector registers c for row-level evaluation. Registering the
// same constraint twice has no effect.
func (s *Selector) RestrictSelector(c RowConstraint) {
	if slices.Contains(s.constraints, c) {
		return
	}
	s.constraints = append(s.constraints, c)
}

// RowConstraints returns the registered row-level constraints in
// registration order.
func (s *Selector) RowConstraints() []RowConstraint {
	return s.constraints
}

func (s *Selector) String() string {
	if s.nodeType == "" {
		return s.name
	}
	return fmt.Sprintf("%s (%s)", s.name, s.nodeType)
}

// Source is the compiled source graph of a query: its selectors in
// declaration order and the bind variable values the query is planned for.
type Source struct {
	selectors []*Selector
	bindings  ir.IRObject
}

// NewSource creates a source over the given selectors.
func NewSource(bindings ir.IRObject, selectors ...*Selector) *Source {
	if bindings == nil {
		bindings = ir.IRObject{}
	}
	return &Source{selectors: selectors, bindings: bindings}
}

// Bindings returns the bind variable values of the query.
func (s *Source) Bindings() ir.IRObject {
	return s.bindings
}

// Selectors returns the selectors in declaration order.
func (s *Source) Selectors() []*Selector {
	return s.selectors
}

// ExistingSelector resolves a selector by name. A miss returns *BindError.
func (s *Source) ExistingSelector(name string) (*Selector, error) {
	for _, sel := range s.selectors {
		if sel.name == name {
			return sel, nil
		}
	}
	known := make([]string, len(s.selectors))
	for i, sel := range s.selectors {
		known[i] = sel.name
	}
	return nil, &BindError{Selector: name, Known: known}
}
