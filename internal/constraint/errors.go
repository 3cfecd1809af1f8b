package constraint

import (
	"errors"
	"fmt"

	"github.com/roach88/treeq/internal/query"
)

// InvalidExpressionError reports full-text search text that does not parse.
// It aborts the query; malformed search text is never treated as no match.
type InvalidExpressionError struct {
	// Expression is the search text as supplied.
	Expression string

	// Err is the underlying *fulltext.ParseError.
	Err error
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression: %s: %v", e.Expression, e.Err)
}

func (e *InvalidExpressionError) Unwrap() error {
	return e.Err
}

// IsInvalidExpression checks if err is an InvalidExpressionError.
func IsInvalidExpression(err error) bool {
	var ie *InvalidExpressionError
	return errors.As(err, &ie)
}

// UnboundVariableError reports a bind variable with no value.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("bind variable $%s has no value", e.Name)
}

// ErrNotBound is returned when a node is used before Bind.
var ErrNotBound = errors.New("constraint is not bound to a selector")

// cursorFor returns the current node of sel in row.
func cursorFor(row *query.Row, sel *query.Selector) (query.Cursor, error) {
	if sel == nil {
		return nil, ErrNotBound
	}
	c := row.Cursor(sel)
	if c == nil {
		return nil, fmt.Errorf("selector %s: %w", sel.Name(), query.ErrNoCursor)
	}
	return c, nil
}
