// Package engine prepares and executes constraint queries over the content
// store.
//
// ARCHITECTURE:
//
// Prepare / Execute:
// A query is prepared once and may then be executed many times, from many
// goroutines at once.
//
//  1. Prepare parses the constraint text (internal/querylang)
//  2. The tree is bound to a single selector (internal/query)
//  3. Restrict collects the filter an index can use
//  4. The full-text constraint is extracted when an index may answer it
//  5. Row-level constraints are pushed down to the selector
//  6. The cheapest index is chosen (internal/index)
//
// Execute asks the index for candidates, positions a fresh query.Row on
// each one and evaluates the row-level constraints. Evaluation is the
// authoritative answer; the index only narrows.
//
// CRITICAL PATTERNS:
//
// Plans Are Immutable
// Nothing in a Plan changes after Prepare. Per-execution state lives in the
// query.Row created by Execute.
//
// Index-Agnostic Results
// Every index returns a superset of the matches, or for a full-text index
// exactly the nodes satisfying its constraint. A query returns the same
// paths whichever index is chosen.
//
// Deterministic Ordering
// Candidates arrive sorted by path (BINARY collation) and results keep that
// order.
package engine
