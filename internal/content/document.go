// Package content defines the document model and the loaders that turn raw
// source bytes into documents ready for validation.
package content

// Document represents one source file being processed. It is owned by the
// validation task processing it; field schemas see it read-only.
type Document struct {
	// Path identifies the document for the duration of the build. It is
	// relative to the content directory and uses forward slashes.
	Path string
	// Collection is the name of the collection the document matched.
	Collection string
	// Fields is the parsed frontmatter object.
	Fields map[string]any
	// Body is the source body with the frontmatter stripped.
	Body []byte
	// HTML is the rendered body.
	HTML string
	// Plain is the rendered body reduced to plain text.
	Plain string
}
