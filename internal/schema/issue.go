// Package schema provides the field validators and transforms applied to
// frontmatter values, plus the Issue model they report failures through.
//
// Schemas never abort sibling fields: a failing field reports one or more
// Issues through its invocation and the pipeline keeps going.
package schema

import (
	"fmt"
	"strings"
)

// Issue codes (exported consts for stable matching by callers).
const (
	CodeInvalidType = "invalid_type"
	CodeRequired    = "required"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodePattern     = "pattern"
	CodeReserved    = "reserved"
	CodeDuplicate   = "duplicate"
	CodeInvalidDate = "invalid_date"
	CodeAsset       = "asset"
	CodeParse       = "parse_error"
)

// Issue is a single located validation failure.
type Issue struct {
	// Code is a stable kind tag, one of the Code* constants.
	Code string
	// Message is the human-readable description.
	Message string
	// Path locates the failing value inside the validated object: an
	// ordered sequence of property names (string) and indexes (int).
	Path []any
	// File is the owning document's path, filled in by the pipeline.
	File string
}

// Issues is a collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, FormatPath(iss[i].Path))
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// FormatPath renders a field path as "a.b[2].c". An empty path renders as ".".
func FormatPath(path []any) string {
	if len(path) == 0 {
		return "."
	}
	b := &strings.Builder{}
	for _, seg := range path {
		switch s := seg.(type) {
		case int:
			fmt.Fprintf(b, "[%d]", s)
		default:
			if b.Len() > 0 {
				b.WriteString(".")
			}
			fmt.Fprint(b, s)
		}
	}
	return b.String()
}
