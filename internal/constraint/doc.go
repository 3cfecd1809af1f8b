// Package constraint implements the constraint nodes of a compiled query.
//
// A query's WHERE condition compiles into a tree of Nodes, each bound to a
// named selector. One tree answers three questions:
//
//   - Restrict pushes a conservative predicate into a query.Filter so an
//     index can narrow candidates. It never eliminates a true match.
//   - Evaluate decides authoritatively whether the current row matches.
//   - When the selector's index matches full text itself, FullTextSearch
//     trusts the index and only re-checks that its property exists.
//
// LIFECYCLE:
//
//	node := querylang.Parse(...)    // unbound, holds selector names
//	node.Bind(src)                  // once; resolves selectors
//	node.Restrict(filter)           // planning, single threaded
//	node.RestrictPushDown(selector) // planning, single threaded
//	node.Evaluate(row)              // per candidate, any goroutine
//
// Nodes keep no per-row state. The current node of each selector is read
// from the query.Row passed to Evaluate, so one bound tree may be evaluated
// by many executions at once.
package constraint
