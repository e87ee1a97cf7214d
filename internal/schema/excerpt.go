package schema

import (
	"context"
)

// DefaultExcerptLength is the truncation limit applied when none is chosen.
const DefaultExcerptLength = 260

// Excerpt produces a short text preview. When the declared value is absent it
// falls back to the document's plain-text content. Truncation is by raw
// character count with no word-boundary awareness. Excerpt never reports an
// issue.
type Excerpt struct {
	Limit int // 0 means DefaultExcerptLength
}

func (e Excerpt) Apply(_ context.Context, value any, inv *Invocation) any {
	limit := e.Limit
	if limit <= 0 {
		limit = DefaultExcerptLength
	}

	text, _ := value.(string)
	if text == "" {
		text = inv.Doc.Plain
	}
	return Truncate(text, limit)
}

// Truncate returns the first min(limit, len(s)) characters of s.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	runes := []rune(s)
	if limit >= len(runes) {
		return s
	}
	return string(runes[:limit])
}
