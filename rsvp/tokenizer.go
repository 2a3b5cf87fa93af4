package rsvp

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Abbreviations whose trailing dot does not end a sentence.
	abbreviationRegex = regexp.MustCompile(
		`(?i)\b(?:mr|mrs|ms|dr|prof|sr|jr|st|vs|etc|e\.g|i\.e|u\.s|u\.k)\.$`,
	)

	sentenceEndRegex = regexp.MustCompile(`[.!?]+["')\]”’]?$`)
	commaRegex       = regexp.MustCompile(`[,;:]["')\]”’]?$`)
	ellipsisRegex    = regexp.MustCompile(`^(?:\.{3,}|…)$`)

	trailingBlankRegex = regexp.MustCompile(`[ \t]+\n`)
	blankLinesRegex    = regexp.MustCompile(`\n{3,}`)

	quoteReplacer = strings.NewReplacer(
		"\u00a0", " ",
		"\r", "",
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
)

// Tokenize splits text into presentation tokens. It is a pure function:
// calling it twice on the same text yields the same tokens.
func Tokenize(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, w := range fields {
		if ellipsisRegex.MatchString(w) {
			continue
		}
		tokens = append(tokens, Token{Text: w, Boundary: classify(w)})
	}
	return tokens
}

// TokenizeWith tokenizes text, withholding a trailing partial word when
// stable is set.
func TokenizeWith(text string, stable bool) []Token {
	if stable {
		return StableTokenize(text)
	}
	return Tokenize(text)
}

func classify(w string) Boundary {
	switch {
	case sentenceEndRegex.MatchString(w) && !abbreviationRegex.MatchString(w):
		return BoundarySentenceEnd
	case commaRegex.MatchString(w):
		return BoundaryComma
	default:
		return BoundaryNone
	}
}

// Normalize cleans up text captured from a rendered message before it is
// tokenized: non-breaking spaces, typographic quotes and runs of blank lines
// are folded, and a text made of nothing but an ellipsis becomes empty.
func Normalize(text string) string {
	t := norm.NFC.String(text)
	t = quoteReplacer.Replace(t)
	t = trailingBlankRegex.ReplaceAllString(t, "\n")
	t = blankLinesRegex.ReplaceAllString(t, "\n\n")
	t = strings.TrimSpace(t)
	if ellipsisRegex.MatchString(t) {
		return ""
	}
	return t
}
