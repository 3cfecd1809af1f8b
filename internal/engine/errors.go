package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/treeq/internal/constraint"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/querylang"
)

// QueryError represents an error detected while preparing or executing a
// query.
//
// QueryError includes structured fields for diagnostics. The underlying
// error stays reachable through errors.As and errors.Is.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Query is the constraint text being processed.
	Query string

	// Err is the underlying error, if any.
	Err error
}

// QueryErrorCode categorizes query errors.
type QueryErrorCode string

const (
	// ErrCodeSyntax indicates the constraint text does not parse.
	ErrCodeSyntax QueryErrorCode = "SYNTAX_ERROR"

	// ErrCodeBind indicates an unknown selector or a bind variable without
	// a value.
	ErrCodeBind QueryErrorCode = "BIND_ERROR"

	// ErrCodeInvalidExpression indicates malformed full-text search text.
	ErrCodeInvalidExpression QueryErrorCode = "INVALID_EXPRESSION"

	// ErrCodeUnsupported indicates a query shape the engine does not plan,
	// such as more than one selector.
	ErrCodeUnsupported QueryErrorCode = "UNSUPPORTED"

	// ErrCodeNoIndex indicates no configured index can answer the query.
	ErrCodeNoIndex QueryErrorCode = "NO_INDEX"

	// ErrCodeExecution indicates a failure while reading candidates.
	ErrCodeExecution QueryErrorCode = "EXECUTION_FAILED"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Query != "" {
		msg += fmt.Sprintf(" (query=%s)", e.Query)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsSyntaxError returns true if the error is a constraint syntax error.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	return hasCode(err, ErrCodeSyntax)
}

// IsBindError returns true if the error is a binding error.
// Uses errors.As to handle wrapped errors.
func IsBindError(err error) bool {
	return hasCode(err, ErrCodeBind)
}

// IsInvalidExpression returns true if the error reports malformed
// full-text search text.
// Uses errors.As to handle wrapped errors.
func IsInvalidExpression(err error) bool {
	return hasCode(err, ErrCodeInvalidExpression) || constraint.IsInvalidExpression(err)
}

func hasCode(err error, code QueryErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// classify wraps err in a QueryError with the code matching its cause.
func classify(text, message string, err error) *QueryError {
	code := ErrCodeExecution
	var (
		se *querylang.SyntaxError
		ue *constraint.UnboundVariableError
	)
	switch {
	case errors.As(err, &se):
		code = ErrCodeSyntax
	case constraint.IsInvalidExpression(err):
		code = ErrCodeInvalidExpression
	case query.IsBindError(err), errors.As(err, &ue), errors.Is(err, constraint.ErrNotBound):
		code = ErrCodeBind
	}
	return &QueryError{Code: code, Message: message, Query: text, Err: err}
}
