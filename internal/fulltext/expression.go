package fulltext

import "strings"

// Expression is a parsed full-text search expression.
//
// This is a sealed interface: Term, Phrase, Not, And and Or are the only
// implementations. Expressions are immutable and safe for concurrent use.
type Expression interface {
	// Match evaluates the expression against a single text blob.
	Match(text string) bool

	// MatchTokens evaluates the expression, resolving the tokens of each
	// term's path through lookup. lookup returns nil for a path with no text.
	MatchTokens(lookup func(path string) []string) bool

	// String renders the expression in the search language. For trees
	// produced by Parse, parsing the result yields an equal tree.
	String() string

	expression()
}

// Term is a bare search word.
//
// Text is the word as written with escapes removed. A word that tokenizes
// into several tokens matches them as a consecutive run. With Prefix set the
// last token only needs to be a prefix of a text token.
type Term struct {
	Path   string
	Text   string
	Prefix bool
}

func (Term) expression() {}

func (t Term) Match(text string) bool {
	return t.MatchTokens(constant(Tokenize(text)))
}

func (t Term) MatchTokens(lookup func(path string) []string) bool {
	return containsRun(lookup(t.Path), Tokenize(t.Text), t.Prefix)
}

func (t Term) String() string {
	s := escapeWord(t.Text)
	if t.Prefix {
		s += "*"
	}
	return s
}

// Phrase is a quoted run of words that must occur consecutively.
type Phrase struct {
	Path string
	Text string
}

func (Phrase) expression() {}

func (p Phrase) Match(text string) bool {
	return p.MatchTokens(constant(Tokenize(text)))
}

func (p Phrase) MatchTokens(lookup func(path string) []string) bool {
	return containsRun(lookup(p.Path), Tokenize(p.Text), false)
}

func (p Phrase) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range p.Text {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Not negates a term or phrase.
type Not struct {
	Expr Expression
}

func (Not) expression() {}

func (n Not) Match(text string) bool {
	return n.MatchTokens(constant(Tokenize(text)))
}

func (n Not) MatchTokens(lookup func(path string) []string) bool {
	return !n.Expr.MatchTokens(lookup)
}

func (n Not) String() string {
	switch n.Expr.(type) {
	case Term, Phrase:
		return "-" + n.Expr.String()
	}
	return "-(" + n.Expr.String() + ")"
}

// And matches when every element matches. An empty And matches everything.
type And struct {
	Exprs []Expression
}

func (And) expression() {}

func (a And) Match(text string) bool {
	return a.MatchTokens(constant(Tokenize(text)))
}

func (a And) MatchTokens(lookup func(path string) []string) bool {
	for _, e := range a.Exprs {
		if !e.MatchTokens(lookup) {
			return false
		}
	}
	return true
}

func (a And) String() string {
	parts := make([]string, len(a.Exprs))
	for i, e := range a.Exprs {
		s := e.String()
		if _, ok := e.(Or); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// Or matches when at least one element matches.
type Or struct {
	Exprs []Expression
}

func (Or) expression() {}

func (o Or) Match(text string) bool {
	return o.MatchTokens(constant(Tokenize(text)))
}

func (o Or) MatchTokens(lookup func(path string) []string) bool {
	for _, e := range o.Exprs {
		if e.MatchTokens(lookup) {
			return true
		}
	}
	return false
}

func (o Or) String() string {
	parts := make([]string, len(o.Exprs))
	for i, e := range o.Exprs {
		s := e.String()
		if _, ok := e.(Or); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " OR ")
}

// Walk calls fn for expr and, while fn returns true, for its descendants in
// depth-first order.
func Walk(expr Expression, fn func(Expression) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case Not:
		Walk(e.Expr, fn)
	case And:
		for _, c := range e.Exprs {
			Walk(c, fn)
		}
	case Or:
		for _, c := range e.Exprs {
			Walk(c, fn)
		}
	}
}

// Paths returns the distinct property paths referenced by expr, in first
// occurrence order.
func Paths(expr Expression) []string {
	seen := map[string]bool{}
	var out []string
	Walk(expr, func(e Expression) bool {
		var p string
		switch t := e.(type) {
		case Term:
			p = t.Path
		case Phrase:
			p = t.Path
		default:
			return true
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
		return true
	})
	return out
}

func constant(toks []string) func(string) []string {
	return func(string) []string { return toks }
}

// escapeWord escapes the characters that would otherwise change how the
// parser reads a bare word.
func escapeWord(text string) string {
	if text == "OR" {
		return `\OR`
	}
	var b strings.Builder
	for i, r := range text {
		switch {
		case r == '\\', r == '"', r == '&', r == '*', isSpace(r):
			b.WriteByte('\\')
		case i == 0 && r == '-':
			b.WriteByte('\\')
		case i == 0 && r == '\'' && strings.HasPrefix(text, "''"):
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
