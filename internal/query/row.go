package query

import "github.com/roach88/treeq/internal/ir"

// Row is the per-execution current-row context: one cursor per selector plus
// the bind variable values of the execution.
//
// A Row belongs to exactly one execution and is not safe for concurrent use.
type Row struct {
	bindings ir.IRObject
	cursors  map[*Selector]Cursor
}

// NewRow creates an empty row for an execution with the given bindings.
func NewRow(bindings ir.IRObject) *Row {
	if bindings == nil {
		bindings = ir.IRObject{}
	}
	return &Row{bindings: bindings, cursors: make(map[*Selector]Cursor)}
}

// Set positions sel on the node c points to.
func (r *Row) Set(sel *Selector, c Cursor) {
	r.cursors[sel] = c
}

// Cursor returns the cursor for sel, or nil when sel is not positioned.
func (r *Row) Cursor(sel *Selector) Cursor {
	return r.cursors[sel]
}

// Bindings returns the bind variable values of the execution.
func (r *Row) Bindings() ir.IRObject {
	return r.bindings
}
