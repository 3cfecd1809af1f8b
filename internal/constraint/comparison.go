package constraint

import (
	"fmt"
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "<>"
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLike           Operator = "LIKE"
)

// ParseOperator maps query syntax to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.ToUpper(s)); op {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual, OpLike:
		return op, nil
	case "!=":
		return OpNotEqual, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// apply compares a property value against the operand value.
func (op Operator) apply(prop, operand ir.IRValue) bool {
	if op == OpLike {
		return likeMatch(ir.Text(operand), ir.Text(prop))
	}
	c := ir.Compare(prop, operand)
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	}
	return false
}

// Comparison is the condition selector.property <op> value. A
// multi-valued property satisfies it when any element does.
type Comparison struct {
	operand  DynamicOperand
	operator Operator
	value    StaticOperand

	selector *query.Selector
}

// NewComparison creates an unbound comparison.
func NewComparison(operand DynamicOperand, op Operator, value StaticOperand) *Comparison {
	return &Comparison{operand: operand, operator: op, value: value}
}

// Operand returns the compared property.
func (n *Comparison) Operand() DynamicOperand { return n.operand }

// Operator returns the comparison operator.
func (n *Comparison) Operator() Operator { return n.operator }

// Value returns the static side of the comparison.
func (n *Comparison) Value() StaticOperand { return n.value }

func (n *Comparison) Accept(v Visitor) bool { return v.VisitComparison(n) }

func (n *Comparison) Bind(src *query.Source) error {
	sel, err := src.ExistingSelector(n.operand.SelectorName)
	if err != nil {
		return err
	}
	n.selector = sel
	return nil
}

func (n *Comparison) Selectors() []*query.Selector { return selectorsOf(n.selector) }

func (n *Comparison) String() string {
	return n.operand.String() + " " + string(n.operator) + " " + n.value.String()
}

func (n *Comparison) Evaluate(row *query.Row) (bool, error) {
	cur, err := cursorFor(row, n.selector)
	if err != nil {
		return false, err
	}
	p, ok, err := lookupProperty(cur, n.operand.Property)
	if err != nil || !ok {
		return false, err
	}
	want, err := n.value.Resolve(row.Bindings())
	if err != nil {
		return false, err
	}
	for _, v := range elements(p.Value) {
		if n.operator.apply(v, want) {
			return true, nil
		}
	}
	return false, nil
}

// Restrict requires the property to exist: no comparison holds on a
// missing property.
func (n *Comparison) Restrict(f *query.Filter) error {
	if f.Selector() == n.selector && !strings.Contains(n.operand.Property, "/") {
		f.RestrictPropertyNotNull(n.operand.Property)
	}
	return nil
}

func (n *Comparison) RestrictPushDown(s *query.Selector) {
	if s == n.selector {
		s.RestrictSelector(n)
	}
}

func (n *Comparison) PropertyExistenceConditions() []*PropertyExistence {
	return []*PropertyExistence{boundExistence(n.operand.SelectorName, n.operand.Property, n.selector)}
}

func (n *Comparison) FullTextConstraint(*query.Selector) (fulltext.Expression, bool, error) {
	return nil, false, nil
}

func (n *Comparison) InMap() map[DynamicOperand][]StaticOperand {
	if n.operator != OpEqual {
		return map[DynamicOperand][]StaticOperand{}
	}
	return map[DynamicOperand][]StaticOperand{n.operand: {n.value}}
}

// In is the condition selector.property IN (v1, v2, ...).
type In struct {
	operand DynamicOperand
	values  []StaticOperand

	selector *query.Selector
}

// NewIn creates an unbound IN condition.
func NewIn(operand DynamicOperand, values ...StaticOperand) *In {
	return &In{operand: operand, values: values}
}

// Operand returns the tested property.
func (n *In) Operand() DynamicOperand { return n.operand }

// Values returns the alternatives.
func (n *In) Values() []StaticOperand { return n.values }

func (n *In) Accept(v Visitor) bool { return v.VisitIn(n) }

func (n *In) Bind(src *query.Source) error {
	sel, err := src.ExistingSelector(n.operand.SelectorName)
	if err != nil {
		return err
	}
	n.selector = sel
	return nil
}

func (n *In) Selectors() []*query.Selector { return selectorsOf(n.selector) }

func (n *In) String() string {
	parts := make([]string, len(n.values))
	for i, v := range n.values {
		parts[i] = v.String()
	}
	return n.operand.String() + " IN (" + strings.Join(parts, ", ") + ")"
}

func (n *In) Evaluate(row *query.Row) (bool, error) {
	cur, err := cursorFor(row, n.selector)
	if err != nil {
		return false, err
	}
	p, ok, err := lookupProperty(cur, n.operand.Property)
	if err != nil || !ok {
		return false, err
	}
	for _, op := range n.values {
		want, err := op.Resolve(row.Bindings())
		if err != nil {
			return false, err
		}
		for _, v := range elements(p.Value) {
			if ir.Compare(v, want) == 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

func (n *In) Restrict(f *query.Filter) error {
	if f.Selector() == n.selector && !strings.Contains(n.operand.Property, "/") {
		f.RestrictPropertyNotNull(n.operand.Property)
	}
	return nil
}

func (n *In) RestrictPushDown(s *query.Selector) {
	if s == n.selector {
		s.RestrictSelector(n)
	}
}

func (n *In) PropertyExistenceConditions() []*PropertyExistence {
	return []*PropertyExistence{boundExistence(n.operand.SelectorName, n.operand.Property, n.selector)}
}

func (n *In) FullTextConstraint(*query.Selector) (fulltext.Expression, bool, error) {
	return nil, false, nil
}

func (n *In) InMap() map[DynamicOperand][]StaticOperand {
	return map[DynamicOperand][]StaticOperand{n.operand: n.values}
}

// elements returns the scalars a property value holds.
func elements(v ir.IRValue) []ir.IRValue {
	if arr, ok := v.(ir.IRArray); ok {
		return arr
	}
	return []ir.IRValue{v}
}

// likeMatch implements SQL LIKE: '%' matches any run, '_' one character,
// and '\' escapes the next pattern character.
func likeMatch(pattern, text string) bool {
	p, t := []rune(pattern), []rune(text)
	var match func(i, j int) bool
	memo := map[[2]int]bool{}
	match = func(i, j int) bool {
		key := [2]int{i, j}
		if v, ok := memo[key]; ok {
			return v
		}
		var res bool
		switch {
		case i == len(p):
			res = j == len(t)
		case p[i] == '%':
			res = match(i+1, j) || (j < len(t) && match(i, j+1))
		case p[i] == '_':
			res = j < len(t) && match(i+1, j+1)
		case p[i] == '\\' && i+1 < len(p):
			res = j < len(t) && t[j] == p[i+1] && match(i+2, j+1)
		default:
			res = j < len(t) && t[j] == p[i] && match(i+1, j+1)
		}
		memo[key] = res
		return res
	}
	return match(0, 0)
}
