package fulltext

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports malformed search text.
type ParseError struct {
	// Text is the complete search text.
	Text string

	// Pos is the byte offset of the offending construct.
	Pos int

	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("full-text expression %q: %s at offset %d", e.Text, e.Msg, e.Pos)
}

// itemKind classifies lexed items.
type itemKind int

const (
	itemWord itemKind = iota
	itemPhrase
	itemOr
)

type item struct {
	kind   itemKind
	pos    int
	text   string
	neg    bool
	prefix bool
}

// Parse parses search text into an expression tree. path is the property
// path the expression applies to and is recorded on every Term and Phrase.
//
// Words and phrases without any searchable token (pure punctuation, "*")
// are dropped. Text that leaves nothing to search for is an error.
func Parse(path, text string) (Expression, error) {
	items, err := lex(text)
	if err != nil {
		return nil, err
	}

	var (
		alternatives []Expression
		group        []Expression
		groupItems   int
	)
	flush := func(pos int) error {
		if groupItems == 0 {
			return &ParseError{Text: text, Pos: pos, Msg: "OR needs a term on both sides"}
		}
		switch len(group) {
		case 0:
		case 1:
			alternatives = append(alternatives, group[0])
		default:
			alternatives = append(alternatives, And{Exprs: group})
		}
		group, groupItems = nil, 0
		return nil
	}

	for _, it := range items {
		if it.kind == itemOr {
			if err := flush(it.pos); err != nil {
				return nil, err
			}
			continue
		}
		groupItems++
		if len(Tokenize(it.text)) == 0 {
			continue
		}
		var e Expression
		if it.kind == itemPhrase {
			e = Phrase{Path: path, Text: it.text}
		} else {
			e = Term{Path: path, Text: it.text, Prefix: it.prefix}
		}
		if it.neg {
			e = Not{Expr: e}
		}
		group = append(group, e)
	}
	if len(items) > 0 && items[len(items)-1].kind == itemOr {
		return nil, &ParseError{Text: text, Pos: items[len(items)-1].pos, Msg: "OR needs a term on both sides"}
	}
	if len(items) > 0 {
		if err := flush(len(text)); err != nil {
			return nil, err
		}
	}

	switch len(alternatives) {
	case 0:
		if len(items) == 0 {
			return nil, &ParseError{Text: text, Pos: 0, Msg: "empty expression"}
		}
		return nil, &ParseError{Text: text, Pos: 0, Msg: "no searchable terms"}
	case 1:
		return alternatives[0], nil
	}
	return Or{Exprs: alternatives}, nil
}

// isSpace reports whether r separates words. An unquoted & separates words
// for compatibility with older search syntax.
func isSpace(r rune) bool {
	return r == '&' || unicode.IsSpace(r)
}

func lex(text string) ([]item, error) {
	var items []item
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isSpace(r) {
			i += size
			continue
		}

		start := i
		neg := false
		if r == '-' {
			neg = true
			i++
			if i == len(text) {
				return nil, &ParseError{Text: text, Pos: start, Msg: "'-' must be followed by a term"}
			}
			if next, _ := utf8.DecodeRuneInString(text[i:]); isSpace(next) {
				return nil, &ParseError{Text: text, Pos: start, Msg: "'-' must be followed by a term"}
			}
		}

		switch {
		case text[i] == '"':
			body, end, err := lexQuoted(text, i+1, `"`)
			if err != nil {
				return nil, err
			}
			items = append(items, item{kind: itemPhrase, pos: start, text: body, neg: neg})
			i = end
		case strings.HasPrefix(text[i:], "''"):
			body, end, err := lexQuoted(text, i+2, "''")
			if err != nil {
				return nil, err
			}
			items = append(items, item{kind: itemPhrase, pos: start, text: body, neg: neg})
			i = end
		default:
			it, end, err := lexWord(text, i)
			if err != nil {
				return nil, err
			}
			it.pos = start
			it.neg = neg
			if !neg && text[i:end] == "OR" {
				it.kind = itemOr
			}
			items = append(items, it)
			i = end
		}
	}
	return items, nil
}

// lexQuoted reads phrase text starting at i up to the closing delimiter and
// returns the unescaped body and the offset after the delimiter.
func lexQuoted(text string, i int, delim string) (string, int, error) {
	open := i - len(delim)
	var b strings.Builder
	for i < len(text) {
		if strings.HasPrefix(text[i:], delim) {
			return b.String(), i + len(delim), nil
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\\' {
			i += size
			if i == len(text) {
				break
			}
			r, size = utf8.DecodeRuneInString(text[i:])
		}
		b.WriteRune(r)
		i += size
	}
	return "", 0, &ParseError{Text: text, Pos: open, Msg: "unterminated phrase"}
}

// lexWord reads a bare word starting at i. A trailing unescaped '*' marks a
// prefix term and is not part of the word.
func lexWord(text string, i int) (item, int, error) {
	var b strings.Builder
	lastStar := false
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isSpace(r) {
			break
		}
		if lastStar {
			b.WriteByte('*')
			lastStar = false
		}
		switch r {
		case '\\':
			if i+size == len(text) {
				return item{}, 0, &ParseError{Text: text, Pos: i, Msg: "dangling escape"}
			}
			i += size
			r, size = utf8.DecodeRuneInString(text[i:])
			b.WriteRune(r)
		case '*':
			lastStar = true
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return item{kind: itemWord, text: b.String(), prefix: lastStar}, i, nil
}
