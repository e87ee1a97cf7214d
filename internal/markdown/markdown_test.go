package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_ProducesHTML(t *testing.T) {
	html, err := Render([]byte("# Title\n\nHello *world*\n"))
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Title</h1>")
	require.Contains(t, html, "<em>world</em>")
}

func TestPlainText_DropsInlineMarkup(t *testing.T) {
	plain := PlainText([]byte("Hello *world*, see [the docs](https://example.com).\n"))
	require.Equal(t, "Hello world, see the docs.", plain)
}

func TestPlainText_SeparatesBlocks(t *testing.T) {
	plain := PlainText([]byte("# Title\n\nFirst paragraph.\n\nSecond paragraph.\n"))
	require.Equal(t, "Title\nFirst paragraph.\nSecond paragraph.", plain)
}

func TestPlainText_SoftBreakBecomesSpace(t *testing.T) {
	plain := PlainText([]byte("line one\nline two\n"))
	require.Equal(t, "line one line two", plain)
}

func TestPlainText_KeepsCodeBlockContent(t *testing.T) {
	plain := PlainText([]byte("```\nfmt.Println(1)\n```\n"))
	require.Contains(t, plain, "fmt.Println(1)")
}

func TestPlainText_Empty(t *testing.T) {
	require.Equal(t, "", PlainText(nil))
}
