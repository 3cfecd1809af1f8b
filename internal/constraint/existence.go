package constraint

import (
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// PropertyExistence is the condition selector.path IS NOT NULL. The path
// is a property name, optionally preceded by a relative node path.
type PropertyExistence struct {
	selectorName string
	propertyPath string

	selector *query.Selector
}

// NewPropertyExistence creates an unbound existence condition.
func NewPropertyExistence(selectorName, propertyPath string) *PropertyExistence {
	return &PropertyExistence{selectorName: selectorName, propertyPath: propertyPath}
}

func boundExistence(selectorName, propertyPath string, sel *query.Selector) *PropertyExistence {
	return &PropertyExistence{selectorName: selectorName, propertyPath: propertyPath, selector: sel}
}

// SelectorName returns the selector the condition applies to.
func (n *PropertyExistence) SelectorName() string { return n.selectorName }

// PropertyPath returns the property path that must exist.
func (n *PropertyExistence) PropertyPath() string { return n.propertyPath }

// Selector returns the bound selector.
func (n *PropertyExistence) Selector() *query.Selector { return n.selector }

// Key identifies the condition for set operations: two conditions with the
// same key are the same precondition.
func (n *PropertyExistence) Key() string {
	return n.selectorName + "." + n.propertyPath
}

func (n *PropertyExistence) Accept(v Visitor) bool { return v.VisitPropertyExistence(n) }

func (n *PropertyExistence) Bind(src *query.Source) error {
	sel, err := src.ExistingSelector(n.selectorName)
	if err != nil {
		return err
	}
	n.selector = sel
	return nil
}

func (n *PropertyExistence) Selectors() []*query.Selector { return selectorsOf(n.selector) }

func (n *PropertyExistence) String() string {
	return quoteIdent(n.selectorName) + "." + quotePath(n.propertyPath) + " IS NOT NULL"
}

func (n *PropertyExistence) Evaluate(row *query.Row) (bool, error) {
	cur, err := cursorFor(row, n.selector)
	if err != nil {
		return false, err
	}
	_, ok, err := lookupProperty(cur, n.propertyPath)
	return ok, err
}

func (n *PropertyExistence) Restrict(f *query.Filter) error {
	if f.Selector() == n.selector && !strings.Contains(n.propertyPath, "/") {
		f.RestrictPropertyNotNull(n.propertyPath)
	}
	return nil
}

func (n *PropertyExistence) RestrictPushDown(s *query.Selector) {
	if s == n.selector {
		s.RestrictSelector(n)
	}
}

func (n *PropertyExistence) PropertyExistenceConditions() []*PropertyExistence {
	return []*PropertyExistence{n}
}

func (n *PropertyExistence) FullTextConstraint(*query.Selector) (fulltext.Expression, bool, error) {
	return nil, false, nil
}

func (n *PropertyExistence) InMap() map[DynamicOperand][]StaticOperand {
	return map[DynamicOperand][]StaticOperand{}
}

// lookupProperty reads a property of the current node, or of a node below
// it when path contains '/'.
func lookupProperty(cur query.Cursor, path string) (ir.Property, bool, error) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		p, ok := cur.CurrentProperty(path)
		return p, ok, nil
	}
	tree, ok, err := cur.Tree(ir.ConcatPath(cur.CurrentPath(), path[:i]))
	if err != nil || !ok {
		return ir.Property{}, false, err
	}
	p, ok := tree.Property(path[i+1:])
	return p, ok, nil
}
