package querylang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/treeq/internal/constraint"
	"github.com/roach88/treeq/internal/ir"
)

// Parse parses constraint text into an unbound node tree.
func Parse(text string) (constraint.Node, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t.describe())
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expectPunct(s string) error {
	t := p.next()
	if !t.isPunct(s) {
		return p.errorf(t, "expected %q, found %s", s, t.describe())
	}
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	t := p.next()
	if !t.isKeyword(kw) {
		return p.errorf(t, "expected %s, found %s", kw, t.describe())
	}
	return nil
}

func (p *parser) parseOr() (constraint.Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	nodes := []constraint.Node{first}
	for p.peek().isKeyword("OR") {
		p.next()
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return constraint.NewOr(nodes...), nil
}

func (p *parser) parseAnd() (constraint.Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	nodes := []constraint.Node{first}
	for p.peek().isKeyword("AND") {
		p.next()
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return constraint.NewAnd(nodes...), nil
}

func (p *parser) parseUnary() (constraint.Node, error) {
	t := p.peek()
	switch {
	case t.isKeyword("NOT"):
		p.next()
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return constraint.NewNot(n), nil
	case t.isPunct("("):
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return n, nil
	case t.isKeyword("contains") && p.toks[p.pos+1].isPunct("("):
		return p.parseContains()
	}
	return p.parsePredicate()
}

func (p *parser) parseContains() (constraint.Node, error) {
	p.next() // contains
	p.next() // (
	selector, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	target := ""
	if p.peek().isPunct(".") {
		p.next()
		if target, err = p.parsePath(true); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	expr, err := p.parseStatic()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return constraint.NewFullTextSearch(selector, target, expr), nil
}

func (p *parser) parsePredicate() (constraint.Node, error) {
	selector, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("."); err != nil {
		return nil, err
	}
	property, err := p.parsePath(false)
	if err != nil {
		return nil, err
	}
	operand := constraint.DynamicOperand{SelectorName: selector, Property: property}

	t := p.next()
	switch {
	case t.isKeyword("IS"):
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return constraint.NewPropertyExistence(selector, property), nil
	case t.isKeyword("IN"):
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		var values []constraint.StaticOperand
		for {
			v, err := p.parseStatic()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if !p.peek().isPunct(",") {
				break
			}
			p.next()
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return constraint.NewIn(operand, values...), nil
	case t.kind == tokPunct || t.isKeyword("LIKE"):
		op, err := constraint.ParseOperator(t.text)
		if err != nil {
			return nil, p.errorf(t, "expected operator, found %s", t.describe())
		}
		v, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		return constraint.NewComparison(operand, op, v), nil
	}
	return nil, p.errorf(t, "expected IS NOT NULL, IN or an operator, found %s", t.describe())
}

// parseIdent reads a bare or bracketed identifier. Keywords are not
// identifiers unless bracketed.
func (p *parser) parseIdent() (string, error) {
	t := p.next()
	switch t.kind {
	case tokQuotedIdent:
		return t.text, nil
	case tokIdent:
		if !constraint.IsBareIdent(t.text) {
			return "", p.errorf(t, "keyword %q cannot be an identifier", t.text)
		}
		return t.text, nil
	}
	return "", p.errorf(t, "expected identifier, found %s", t.describe())
}

// parsePath reads segment ("/" segment)*. '*' is allowed as the last
// segment when star is set.
func (p *parser) parsePath(star bool) (string, error) {
	var segs []string
	for {
		t := p.peek()
		if t.isPunct("*") {
			if !star {
				return "", p.errorf(t, "'*' is only allowed in contains()")
			}
			p.next()
			segs = append(segs, "*")
			if p.peek().isPunct("/") {
				return "", p.errorf(p.peek(), "'*' must be the last path segment")
			}
			break
		}
		s, err := p.parseIdent()
		if err != nil {
			return "", err
		}
		segs = append(segs, s)
		if !p.peek().isPunct("/") {
			break
		}
		p.next()
	}
	return strings.Join(segs, "/"), nil
}

func (p *parser) parseStatic() (constraint.StaticOperand, error) {
	t := p.next()
	switch {
	case t.kind == tokString:
		return constraint.Literal{Value: ir.IRString(t.text)}, nil
	case t.kind == tokBindVar:
		return constraint.BindVariable{Name: t.text}, nil
	case t.kind == tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errorf(t, "integer out of range: %s", t.text)
		}
		return constraint.Literal{Value: ir.IRInt(n)}, nil
	case t.isKeyword("TRUE"):
		return constraint.Literal{Value: ir.IRBool(true)}, nil
	case t.isKeyword("FALSE"):
		return constraint.Literal{Value: ir.IRBool(false)}, nil
	}
	return nil, p.errorf(t, "expected a literal or bind variable, found %s", t.describe())
}
