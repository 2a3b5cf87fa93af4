package rsvp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// boundaryRunes end a word for certain even when no whitespace follows.
const boundaryRunes = `.!?;,:"')]”’`

// StableTokenize tokenizes text that may still be growing. When the text does
// not end on a clear boundary the last token may be a word that is still
// being written, so it is withheld until a later snapshot confirms it.
func StableTokenize(text string) []Token {
	return Stabilize(text, Tokenize(text))
}

// Stabilize drops the last of tokens unless text ends with whitespace or
// boundary punctuation. At most one token is withheld per call.
func Stabilize(text string, tokens []Token) []Token {
	if len(tokens) == 0 || endsOnBoundary(text) {
		return tokens
	}
	return tokens[:len(tokens)-1]
}

func endsOnBoundary(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsSpace(r) || strings.ContainsRune(boundaryRunes, r)
}
