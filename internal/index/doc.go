// Package index provides the candidate sources a selector can be planned
// against.
//
// Each index translates the restrictions collected on a query.Filter into a
// queryir query and answers it from the store through the SQL backend:
//
//   - Traversal: every node of the selector's type
//   - Property: nodes carrying every required property
//   - FullText: nodes containing the tokens a full-text constraint requires
//
// Cost is the candidate count the index would return, measured with a COUNT
// over the same query. An index that cannot answer a filter reports
// math.Inf(1). Select picks the cheapest index; ties keep declaration order.
//
// Only FullText reports SupportsFullText. It re-checks every candidate
// against the filter's full-text constraint over the stored tokens before
// returning it, so rows it produces never need the text matched again.
package index
