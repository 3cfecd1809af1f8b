// Package store provides SQLite-backed storage for the content tree.
//
// The store holds:
//   - Nodes: one row per path, with a node type and a content hash
//   - Properties: named values per node, canonical JSON encoded
//   - Tokens: the full-text search tokens of every property, in text order
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Every path listing ends in ORDER BY path COLLATE BINARY ASC
//   - Results compare identically to Go string ordering
//
// Tokens Match the Matcher
//   - Tokens are produced by fulltext.Tokenize, the same function the
//     in-memory matcher uses, so index lookups and row evaluation agree
//
// Content Hash Short-Circuit
//   - PutNode skips reindexing when ir.ContentHash is unchanged
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Properties and tokens cascade with their node
//
// The pool holds a single connection. Rows must be closed before the next
// statement is issued, and statements inside a transaction go through the
// transaction.
package store
