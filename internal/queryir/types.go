package queryir

// Query represents an abstract candidate query over the content tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
//
// Every query produces a set of node paths. Indexes build queries from the
// restrictions collected on a filter; the backend decides how to answer them.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a condition on one node.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - PropertyNotNull: the node has a property
//   - HasToken: a property of the node contains a search token
//   - HasTokenPrefix: a property of the node contains a token with a prefix
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents a scan over the nodes of one type.
//
// Semantics:
//
//	SELECT path FROM nodes WHERE node_type = <from> AND <filter>
//	ORDER BY path
//
// Example:
//
//	Select{
//	  From: "article",
//	  Filter: And{Predicates: []Predicate{
//	    PropertyNotNull{Name: "title"},
//	    HasToken{Property: "title", Token: "go"},
//	  }},
//	}
//
// Produces the paths of article nodes whose title contains the token "go".
type Select struct {
	From   string    // Node type; "" ranges over every node
	Filter Predicate // Conditions (nil = no filter)
}

func (Select) queryNode() {}

// PropertyNotNull requires the node to carry a property.
//
// Semantics:
//
//	EXISTS property <name> on the node
//
// Properties are never stored with a null value, so existence is the only
// notion of "not null".
type PropertyNotNull struct {
	Name string
}

func (PropertyNotNull) predicateNode() {}

// HasToken requires an indexed search token.
//
// Semantics:
//
//	<property> contains token <token>
//
// An empty Property matches the token in any property of the node. Token
// must already be normalized the way the store indexes text.
//
// Example:
//
//	HasToken{Property: "title", Token: "go"}
type HasToken struct {
	Property string
	Token    string
}

func (HasToken) predicateNode() {}

// HasTokenPrefix requires an indexed search token starting with Prefix.
// An empty Property matches any property of the node.
type HasTokenPrefix struct {
	Property string
	Prefix   string
}

func (HasTokenPrefix) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// Semantics:
//
//	<predicate1> AND <predicate2> AND ... AND <predicateN>
//
// Returns true if Predicates is empty (vacuous truth).
type And struct {
	Predicates []Predicate // All must be true (empty = always true)
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (at least one must be true).
//
// Semantics:
//
//	<predicate1> OR <predicate2> OR ... OR <predicateN>
//
// An empty Or is never true. Validate flags it, since a query containing one
// can only be answered by returning nothing.
type Or struct {
	Predicates []Predicate // At least one must be true (empty = never true)
}

func (Or) predicateNode() {}
