package content

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/contentforge/internal/frontmatter"
	"git.home.luguber.info/inful/contentforge/internal/markdown"
)

// Loader turns raw source bytes into a Document. Match is the predicate the
// pipeline uses to pick a loader for a file.
type Loader interface {
	Match(path string) bool
	Load(path string, raw []byte) (*Document, error)
}

// MarkdownLoader loads frontmatter-delimited Markdown documents and derives
// the rendered HTML and plain-text projections of the body.
type MarkdownLoader struct{}

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

func (MarkdownLoader) Match(p string) bool {
	return markdownExtensions[strings.ToLower(path.Ext(p))]
}

func (MarkdownLoader) Load(p string, raw []byte) (*Document, error) {
	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter of %s: %w", p, err)
	}

	html, err := markdown.Render(body)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", p, err)
	}

	return &Document{
		Path:   p,
		Fields: fields,
		Body:   body,
		HTML:   html,
		Plain:  markdown.PlainText(body),
	}, nil
}
