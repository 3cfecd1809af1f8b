package constraint

import (
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// FullTextSearch is the contains(selector.path, expression) condition.
//
// The target path is split at its last '/': the left part is a path
// relative to the selector's node, the right part a property name. A '*' or
// empty property name searches every property of the target node.
//
// Examples:
//
//	contains(a, 'go')              all properties of a's node
//	contains(a.title, 'go')        property title of a's node
//	contains(a.jcr:content/*, 'go') all properties of a's child jcr:content
type FullTextSearch struct {
	selectorName    string
	relativePath    string
	hasRelativePath bool
	propertyName    string
	expression      StaticOperand

	selector *query.Selector
	bindings ir.IRObject
}

// NewFullTextSearch creates an unbound contains() node. target is the path
// after the selector name ("" when the query names only the selector).
func NewFullTextSearch(selectorName, target string, expr StaticOperand) *FullTextSearch {
	n := &FullTextSearch{selectorName: selectorName, expression: expr, propertyName: target}
	if i := strings.LastIndexByte(target, '/'); i >= 0 {
		n.relativePath = target[:i]
		n.hasRelativePath = true
		n.propertyName = target[i+1:]
	}
	if n.propertyName == "*" {
		n.propertyName = ""
	}
	return n
}

// SelectorName returns the name of the selector the node searches.
func (n *FullTextSearch) SelectorName() string { return n.selectorName }

// RelativePath returns the relative path and whether one was given.
func (n *FullTextSearch) RelativePath() (string, bool) { return n.relativePath, n.hasRelativePath }

// PropertyName returns the searched property, "" for all properties.
func (n *FullTextSearch) PropertyName() string { return n.propertyName }

// Expression returns the search text operand.
func (n *FullTextSearch) Expression() StaticOperand { return n.expression }

// Selector returns the bound selector.
func (n *FullTextSearch) Selector() *query.Selector { return n.selector }

func (n *FullTextSearch) Accept(v Visitor) bool { return v.VisitFullTextSearch(n) }

func (n *FullTextSearch) Bind(src *query.Source) error {
	sel, err := src.ExistingSelector(n.selectorName)
	if err != nil {
		return err
	}
	n.selector = sel
	n.bindings = src.Bindings()
	return nil
}

func (n *FullTextSearch) Selectors() []*query.Selector {
	return selectorsOf(n.selector)
}

// targetPath is the path rendered after the selector name.
func (n *FullTextSearch) targetPath() string {
	p := n.propertyName
	if p == "" {
		p = "*"
	}
	if n.hasRelativePath {
		return n.relativePath + "/" + p
	}
	return p
}

// expressionPath is the path the search expression is parsed against.
func (n *FullTextSearch) expressionPath() string {
	if !n.hasRelativePath {
		return n.propertyName
	}
	p := n.propertyName
	if p == "" {
		p = "*"
	}
	return n.relativePath + "/" + p
}

func (n *FullTextSearch) String() string {
	return "contains(" + quoteIdent(n.selectorName) + "." + quotePath(n.targetPath()) + ", " + n.expression.String() + ")"
}

// PropertyExistenceConditions returns one condition when a concrete
// property is named and none for a '*' target.
func (n *FullTextSearch) PropertyExistenceConditions() []*PropertyExistence {
	if n.propertyName == "" {
		return nil
	}
	path := n.propertyName
	if n.hasRelativePath {
		path = n.relativePath + "/" + n.propertyName
	}
	return []*PropertyExistence{boundExistence(n.selectorName, path, n.selector)}
}

func (n *FullTextSearch) FullTextConstraint(s *query.Selector) (fulltext.Expression, bool, error) {
	if s != n.selector {
		return nil, false, nil
	}
	expr, err := n.parse(n.bindings)
	if err != nil {
		return nil, false, err
	}
	return expr, true, nil
}

func (n *FullTextSearch) parse(bindings ir.IRObject) (fulltext.Expression, error) {
	text, err := resolveText(n.expression, bindings)
	if err != nil {
		return nil, err
	}
	expr, err := fulltext.Parse(n.expressionPath(), text)
	if err != nil {
		return nil, &InvalidExpressionError{Expression: text, Err: err}
	}
	return expr, nil
}

func (n *FullTextSearch) InMap() map[DynamicOperand][]StaticOperand {
	return map[DynamicOperand][]StaticOperand{}
}

// Evaluate applies, in order:
//
//  1. When the selector's index matches full text, the index has proven the
//     match. Only a property named directly on the selector's node is
//     checked for existence; no text is read.
//  2. Without a relative path, the named property (or all properties) of
//     the current node is searched.
//  3. With a relative path, the target node is resolved from the current
//     path; a missing target is false.
func (n *FullTextSearch) Evaluate(row *query.Row) (bool, error) {
	cur, err := cursorFor(row, n.selector)
	if err != nil {
		return false, err
	}

	if n.selector.UsesFullTextIndex() {
		if n.propertyName != "" && !n.hasRelativePath {
			_, ok := cur.CurrentProperty(n.propertyName)
			return ok, nil
		}
		return true, nil
	}

	var text string
	if !n.hasRelativePath {
		if n.propertyName != "" {
			p, ok := cur.CurrentProperty(n.propertyName)
			if !ok {
				return false, nil
			}
			text = joinTexts([]ir.Property{p})
		} else {
			text = joinTexts(cur.CurrentProperties())
		}
	} else {
		tree, ok, err := cur.Tree(ir.ConcatPath(cur.CurrentPath(), n.relativePath))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if n.propertyName != "" {
			p, ok := tree.Property(n.propertyName)
			if !ok {
				return false, nil
			}
			text = joinTexts([]ir.Property{p})
		} else {
			text = joinTexts(tree.Properties())
		}
	}

	expr, err := n.parse(row.Bindings())
	if err != nil {
		return false, err
	}
	return expr.Match(text), nil
}

// Restrict always pushes the search text. It also requires the property to
// exist when the property sits directly on this selector's node; a relative
// path cannot be expressed as a filter restriction.
func (n *FullTextSearch) Restrict(f *query.Filter) error {
	if !n.hasRelativePath && n.propertyName != "" && f.Selector() == n.selector {
		f.RestrictPropertyNotNull(n.propertyName)
	}
	text, err := resolveText(n.expression, f.Bindings())
	if err != nil {
		return err
	}
	f.RestrictFullTextCondition(text)
	return nil
}

func (n *FullTextSearch) RestrictPushDown(s *query.Selector) {
	if s == n.selector {
		s.RestrictSelector(n)
	}
}

// joinTexts concatenates every value of props, array elements included,
// separated by single spaces.
func joinTexts(props []ir.Property) string {
	var parts []string
	for _, p := range props {
		parts = append(parts, p.Texts()...)
	}
	return strings.Join(parts, " ")
}
