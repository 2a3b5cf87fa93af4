package rsvp

import (
	"reflect"
	"testing"
)

// TestTokenize tests boundary classification.
func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Token
	}{
		{
			name: "comma and sentence end",
			text: "Hello, world.",
			want: []Token{
				{Text: "Hello,", Boundary: BoundaryComma},
				{Text: "world.", Boundary: BoundarySentenceEnd},
			},
		},
		{
			name: "abbreviation is not a sentence end",
			text: "Dr. Smith arrived.",
			want: []Token{
				{Text: "Dr.", Boundary: BoundaryNone},
				{Text: "Smith", Boundary: BoundaryNone},
				{Text: "arrived.", Boundary: BoundarySentenceEnd},
			},
		},
		{
			name: "closing quote after punctuation",
			text: `He said "stop!" then (left), "fine;"`,
			want: []Token{
				{Text: "He", Boundary: BoundaryNone},
				{Text: "said", Boundary: BoundaryNone},
				{Text: `"stop!"`, Boundary: BoundarySentenceEnd},
				{Text: "then", Boundary: BoundaryNone},
				{Text: "(left),", Boundary: BoundaryComma},
				{Text: `"fine;"`, Boundary: BoundaryComma},
			},
		},
		{
			name: "repeated terminal punctuation",
			text: "Really?! Yes",
			want: []Token{
				{Text: "Really?!", Boundary: BoundarySentenceEnd},
				{Text: "Yes", Boundary: BoundaryNone},
			},
		},
		{
			name: "abbreviations are case insensitive",
			text: "see e.g. the U.S. etc.",
			want: []Token{
				{Text: "see", Boundary: BoundaryNone},
				{Text: "e.g.", Boundary: BoundaryNone},
				{Text: "the", Boundary: BoundaryNone},
				{Text: "U.S.", Boundary: BoundaryNone},
				{Text: "etc.", Boundary: BoundaryNone},
			},
		},
		{
			name: "word ending in an abbreviation suffix",
			text: "first.",
			want: []Token{{Text: "first.", Boundary: BoundarySentenceEnd}},
		},
		{
			name: "ellipsis fragments are dropped",
			text: "wait ... for it … now",
			want: []Token{
				{Text: "wait", Boundary: BoundaryNone},
				{Text: "for", Boundary: BoundaryNone},
				{Text: "it", Boundary: BoundaryNone},
				{Text: "now", Boundary: BoundaryNone},
			},
		},
		{
			name: "whitespace runs collapse",
			text: "  one\t\ttwo\n\n three  ",
			want: []Token{
				{Text: "one", Boundary: BoundaryNone},
				{Text: "two", Boundary: BoundaryNone},
				{Text: "three", Boundary: BoundaryNone},
			},
		},
		{
			name: "empty text",
			text: "   ",
			want: []Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestTokenizeIdempotent tests that tokenizing is a pure function.
func TestTokenizeIdempotent(t *testing.T) {
	texts := []string{
		"Stop. Go now.",
		"Mr. Jones, meet Dr. Who; he is late...",
		"",
		"single",
	}

	for _, text := range texts {
		a := Tokenize(text)
		b := Tokenize(text)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Tokenize(%q) not idempotent: %v vs %v", text, a, b)
		}
	}
}

// TestNormalize tests cleanup of captured text.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "hello", "hello"},
		{"non-breaking space", "a\u00a0b", "a b"},
		{"carriage returns", "a\r\nb", "a\nb"},
		{"curly quotes", "“hi” ‘there’", `"hi" 'there'`},
		{"blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"trailing blanks", "a  \nb", "a\nb"},
		{"ellipsis only", " … ", ""},
		{"dots only", "...", ""},
		{"surrounding space", "\n  text  \n", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.text); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// TestBoundaryString tests the String() method for Boundary.
func TestBoundaryString(t *testing.T) {
	tests := []struct {
		boundary Boundary
		expected string
	}{
		{BoundaryNone, "none"},
		{BoundaryComma, "comma"},
		{BoundarySentenceEnd, "sentence"},
		{Boundary(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.boundary.String(); got != tt.expected {
				t.Errorf("Boundary.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
