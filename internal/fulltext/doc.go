// Package fulltext parses and evaluates full-text search expressions.
//
// SEARCH LANGUAGE:
//
//	hello world        both terms must occur (implicit AND)
//	"hello world"      phrase: the tokens must occur consecutively
//	''hello world''    legacy phrase delimiters, same as "hello world"
//	-draft             negation of a term or phrase
//	cat OR dog         alternation; OR binds looser than the implicit AND
//	data*              prefix match on the last token
//	max&moritz         an unquoted & is whitespace: max moritz
//	a\ b               backslash escapes the next character
//
// MATCHING:
//
// Matching is token based. Text is NFC normalized, Unicode case folded and
// split into runs of letters and digits (see Tokenize). A term matches when
// its tokens occur consecutively in the text. Punctuation never matches on
// its own, so "foo-bar" as a bare term is the phrase "foo bar".
//
// Every Term and Phrase carries the property path it was parsed against.
// Match ignores paths and evaluates the whole expression against one text;
// MatchTokens resolves each path separately, which is how an index checks an
// expression that combines several contains() predicates.
package fulltext
