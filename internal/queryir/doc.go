// Package queryir provides an abstract query intermediate representation (IR)
// for candidate lookups over the content tree.
//
// QueryIR is the boundary between the indexes that decide what to ask and
// the backend that answers. Indexes translate the restrictions collected on a
// filter into a Query; the SQL backend (internal/querysql) compiles it
// against the store schema.
//
// ARCHITECTURE:
//
//	[constraint tree] → [Filter] → [Index] → [Query IR] → [SQL Backend]
//
// Every query yields node paths. A query is always a superset of the nodes
// the constraint tree accepts: predicates only ever narrow conservatively,
// and candidates are checked again before they become results.
//
// PREDICATES:
//
//   - PropertyNotNull(name) - the node carries the property
//   - HasToken(property, token) - a normalized search token is indexed
//   - HasTokenPrefix(property, prefix) - an indexed token has the prefix
//   - And, Or - composition
//
// Tokens and prefixes are compared as stored; producers normalize them with
// fulltext.Tokenize first.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement Query or Predicate interfaces.
//
// This enables:
//   - Exhaustive type switches in backends
//   - Compile-time safety against external extensions
//   - Clear contract for backend implementers
//
// Example:
//
//	switch p := pred.(type) {
//	case HasToken, *HasToken:
//	    // EXISTS over the tokens table
//	case Or, *Or:
//	    // disjunction
//	}
//
// PRUNING:
//
// Validate reports whether a query actually narrows the node set. An index
// whose query does not narrow gives no advantage over a traversal and
// should decline to answer.
package queryir
