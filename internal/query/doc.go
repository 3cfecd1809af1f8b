// Package query holds the execution context that constraint nodes plan and
// evaluate against.
//
// LIFECYCLE:
//
// A compiled query owns one Source. Planning is single threaded: nodes bind
// to Selectors through Source.ExistingSelector, push restrictions into a
// Filter, and register themselves on their Selector as row constraints. The
// chosen Index is stored on the Selector. After planning none of these
// objects change.
//
// Execution reads the current row through a Row, never through the
// Selector. Each execution owns its Row, so concurrent executions of the
// same compiled query cannot observe each other's current node.
package query
