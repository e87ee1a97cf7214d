// Package markdown renders document bodies with Goldmark and derives the
// plain-text projection used for excerpts.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Render converts a Markdown body (frontmatter already removed) to HTML.
func Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText reduces a Markdown body to its textual content. Inline markup is
// dropped, soft and hard line breaks become single spaces, and blocks are
// separated by single newlines.
func PlainText(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var b strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if n.Type() == gmast.TypeBlock && b.Len() > 0 {
				b.WriteByte('\n')
			}
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.CodeBlock:
			writeLines(&b, node, body)
		case *gmast.FencedCodeBlock:
			writeLines(&b, node, body)
		}
		return gmast.WalkContinue, nil
	})

	return collapseBlankLines(strings.TrimSpace(b.String()))
}

func writeLines(b *strings.Builder, n gmast.Node, body []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(body))
	}
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n") {
		s = strings.ReplaceAll(s, "\n\n", "\n")
	}
	return s
}
