package fulltext

// Token is a normalized search token an expression requires.
type Token struct {
	// Path is the property path of the term the token came from.
	Path string

	// Text is the normalized token.
	Text string

	// Prefix marks a token that only needs to prefix an indexed token.
	Prefix bool
}

// RequiredTerms returns tokens that every text matching expr must contain.
//
// The result is conservative: a text may contain all required tokens and
// still not match (phrases also need adjacency), but a text missing one of
// them never matches. An empty result means the expression cannot be used to
// narrow candidates, as with purely negative expressions.
func RequiredTerms(expr Expression) []Token {
	switch e := expr.(type) {
	case Term:
		return tokensOf(e.Path, e.Text, e.Prefix)
	case Phrase:
		return tokensOf(e.Path, e.Text, false)
	case Not:
		return nil
	case And:
		var out []Token
		for _, c := range e.Exprs {
			out = appendUnique(out, RequiredTerms(c)...)
		}
		return out
	case Or:
		if len(e.Exprs) == 0 {
			return nil
		}
		out := RequiredTerms(e.Exprs[0])
		for _, c := range e.Exprs[1:] {
			out = intersect(out, RequiredTerms(c))
		}
		return out
	}
	return nil
}

func tokensOf(path, text string, prefix bool) []Token {
	toks := Tokenize(text)
	out := make([]Token, 0, len(toks))
	for i, t := range toks {
		out = appendUnique(out, Token{Path: path, Text: t, Prefix: prefix && i == len(toks)-1})
	}
	return out
}

func appendUnique(dst []Token, toks ...Token) []Token {
outer:
	for _, t := range toks {
		for _, d := range dst {
			if d == t {
				continue outer
			}
		}
		dst = append(dst, t)
	}
	return dst
}

func intersect(a, b []Token) []Token {
	var out []Token
	for _, t := range a {
		for _, u := range b {
			if t == u {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
