package constraint

import (
	"strconv"

	"github.com/roach88/treeq/internal/ir"
)

// StaticOperand is a value that does not depend on the current row: a
// literal or a bind variable.
type StaticOperand interface {
	// Resolve returns the operand's value under bindings.
	Resolve(bindings ir.IRObject) (ir.IRValue, error)

	// String renders the operand in query syntax.
	String() string

	staticOperand()
}

// Literal is a constant value written in the query.
type Literal struct {
	Value ir.IRValue
}

func (Literal) staticOperand() {}

// Resolve returns the literal value.
func (l Literal) Resolve(ir.IRObject) (ir.IRValue, error) {
	return l.Value, nil
}

// String renders strings single-quoted with embedded quotes doubled.
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case ir.IRString:
		return quoteString(string(v))
	case ir.IRInt:
		return strconv.FormatInt(int64(v), 10)
	case ir.IRBool:
		return strconv.FormatBool(bool(v))
	}
	return quoteString(ir.Text(l.Value))
}

// BindVariable is a named placeholder, written $name, whose value is
// supplied when the query is prepared.
type BindVariable struct {
	Name string
}

func (BindVariable) staticOperand() {}

// Resolve looks the variable up in bindings.
func (b BindVariable) Resolve(bindings ir.IRObject) (ir.IRValue, error) {
	v, ok := bindings[b.Name]
	if !ok {
		return nil, &UnboundVariableError{Name: b.Name}
	}
	return v, nil
}

func (b BindVariable) String() string {
	return "$" + b.Name
}

// DynamicOperand is a property of the current node of a selector. It is
// comparable and serves as the key of InMap.
type DynamicOperand struct {
	SelectorName string
	Property     string
}

func (d DynamicOperand) String() string {
	return quoteIdent(d.SelectorName) + "." + quotePath(d.Property)
}

// resolveText resolves op and renders it as search text.
func resolveText(op StaticOperand, bindings ir.IRObject) (string, error) {
	v, err := op.Resolve(bindings)
	if err != nil {
		return "", err
	}
	return ir.Text(v), nil
}
