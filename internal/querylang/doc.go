// Package querylang parses the textual constraint language into
// constraint.Node trees.
//
// GRAMMAR:
//
//	expr     := or
//	or       := and ("OR" and)*
//	and      := unary ("AND" unary)*
//	unary    := "NOT" unary | "(" expr ")" | primary
//	primary  := "contains" "(" target "," static ")"
//	          | operand "IS" "NOT" "NULL"
//	          | operand op static
//	          | operand "IN" "(" static ("," static)* ")"
//	target   := selector ["." path]
//	path     := segment ("/" segment)*      segment is an ident or '*'
//	operand  := selector "." path
//	op       := "=" | "<>" | "!=" | "<" | "<=" | ">" | ">=" | "LIKE"
//	static   := 'string' | "string" | $name | integer | TRUE | FALSE
//	ident    := bare identifier | [bracketed identifier]
//
// Keywords are case-insensitive. Inside a string the delimiter is escaped by
// doubling it. Inside brackets ']' is escaped as ']]'.
//
// Rendering a parsed node with String and parsing the result yields an
// equal node.
package querylang
