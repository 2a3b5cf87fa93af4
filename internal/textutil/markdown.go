// Package textutil turns markdown documents into the plain text the reader
// tokenizes.
package textutil

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// PlainText extracts the readable text of a markdown document. Block
// elements are separated by newlines; markup, link targets and raw HTML are
// dropped. Partial documents, such as a file still being written, are fine.
func PlainText(src string) string {
	_, body := SplitFrontMatter(src)
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var out strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock, *ast.FencedCodeBlock:
			writeBlock(&out, codeLines(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			writeBlock(&out, inlineText(node, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(out.String())
}

func writeBlock(out *strings.Builder, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if out.Len() > 0 {
		out.WriteByte('\n')
	}
	out.WriteString(s)
}

// inlineText concatenates the text of every inline descendant of n.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	writeInline(&buf, n, source)
	return buf.String()
}

func writeInline(buf *bytes.Buffer, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(source))
		case *ast.RawHTML:
			// skip
		default:
			writeInline(buf, c, source)
		}
	}
}

func codeLines(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}
