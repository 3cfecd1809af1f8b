package query

import (
	"errors"
	"fmt"
)

// BindError reports a selector name that does not exist in the source.
// It indicates an inconsistent query tree and is never retried.
type BindError struct {
	// Selector is the name that failed to resolve.
	Selector string

	// Known lists the selector names the source does define.
	Known []string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("unknown selector %q (known: %v)", e.Selector, e.Known)
}

// IsBindError checks if err is a BindError.
func IsBindError(err error) bool {
	var be *BindError
	return errors.As(err, &be)
}

// ErrNoCursor is returned when a row has no current node for a selector.
var ErrNoCursor = errors.New("row has no cursor for selector")
