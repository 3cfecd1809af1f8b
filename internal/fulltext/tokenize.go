package fulltext

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into normalized search tokens.
//
// The text is NFC normalized and case folded, then split on every rune that
// is not a letter, digit or combining mark. The store indexes exactly these
// tokens, so index lookups and in-memory matching agree.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// A Caser holds state and must not be shared between goroutines.
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.FieldsFunc(folded, isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}

// containsRun reports whether want occurs as a consecutive run in toks.
// When prefix is set the last element of want only needs to be a prefix of
// the corresponding token.
func containsRun(toks, want []string, prefix bool) bool {
	if len(want) == 0 {
		return true
	}
	last := len(want) - 1
	for i := 0; i+len(want) <= len(toks); i++ {
		ok := true
		for j, w := range want {
			tok := toks[i+j]
			if j == last && prefix {
				if !strings.HasPrefix(tok, w) {
					ok = false
					break
				}
				continue
			}
			if tok != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
