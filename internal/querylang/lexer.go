package querylang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports malformed constraint text.
type SyntaxError struct {
	// Pos is the byte offset of the offending token.
	Pos int

	// Msg describes the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokInt
	tokBindVar
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent, tokQuotedIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokInt:
		return "integer"
	case tokBindVar:
		return "bind variable"
	}
	return "punctuation"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// isKeyword reports whether a bare identifier token is the keyword kw.
func (t token) isKeyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (t token) isPunct(p string) bool {
	return t.kind == tokPunct && t.text == p
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}

func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '\'' || r == '"':
			s, end, err := lexDelimited(text, i, r, r)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i = end
		case r == '[':
			s, end, err := lexDelimited(text, i, '[', ']')
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokQuotedIdent, text: s, pos: i})
			i = end
		case r == '$':
			end := scanIdent(text, i+1)
			if end == i+1 {
				return nil, &SyntaxError{Pos: i, Msg: "expected bind variable name after '$'"}
			}
			toks = append(toks, token{kind: tokBindVar, text: text[i+1 : end], pos: i})
			i = end
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(text) && isDigit(text[i+1])):
			end := i + 1
			for end < len(text) && isDigit(text[end]) {
				end++
			}
			toks = append(toks, token{kind: tokInt, text: text[i:end], pos: i})
			i = end
		case r == '_' || unicode.IsLetter(r):
			end := scanIdent(text, i)
			toks = append(toks, token{kind: tokIdent, text: text[i:end], pos: i})
			i = end
		default:
			p := lexPunct(text[i:])
			if p == "" {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, token{kind: tokPunct, text: p, pos: i})
			i += len(p)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(text)}), nil
}

var puncts = []string{"<>", "!=", "<=", ">=", "(", ")", ",", ".", "/", "*", "=", "<", ">"}

func lexPunct(s string) string {
	for _, p := range puncts {
		if strings.HasPrefix(s, p) {
			return p
		}
	}
	return ""
}

// scanIdent returns the end of the identifier starting at i.
func scanIdent(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !(r == '_' || r == ':' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		i += size
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lexDelimited reads from the opening delimiter at i to the matching close.
// A doubled closing delimiter stands for itself.
func lexDelimited(text string, i int, open, closing rune) (string, int, error) {
	var b strings.Builder
	j := i + utf8.RuneLen(open)
	for j < len(text) {
		r, size := utf8.DecodeRuneInString(text[j:])
		if r == closing {
			if next, _ := utf8.DecodeRuneInString(text[j+size:]); j+size < len(text) && next == closing {
				b.WriteRune(closing)
				j += 2 * size
				continue
			}
			return b.String(), j + size, nil
		}
		b.WriteRune(r)
		j += size
	}
	what := "string"
	if open == '[' {
		what = "identifier"
	}
	return "", 0, &SyntaxError{Pos: i, Msg: "unterminated " + what}
}
