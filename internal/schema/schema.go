package schema

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/contentforge/internal/assets"
	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/content"
)

// Invocation carries the contextual metadata a field receives from the
// validation pipeline: the document being validated (read-only), the shared
// build context, the field's path within the object, and the issue callback.
type Invocation struct {
	Doc    *content.Document
	Build  *buildctx.Context
	Assets *assets.Resolver
	Path   []any
	Report func(Issue)
}

// Child returns a copy of the invocation with the path extended by one
// segment, for recursing into object properties and list elements.
func (inv *Invocation) Child(segment any) *Invocation {
	child := *inv
	child.Path = append(append([]any{}, inv.Path...), segment)
	return &child
}

// Issuef reports a formatted issue at the invocation's path.
func (inv *Invocation) Issuef(code, format string, args ...any) {
	inv.Report(Issue{Code: code, Message: fmt.Sprintf(format, args...), Path: inv.Path})
}

// Field is one composable validator/transform unit. Apply consumes the raw
// value and returns the transformed value, or nil after reporting one or more
// issues through the invocation. Apply must be idempotent on its own output
// and must never panic on malformed input.
type Field interface {
	Apply(ctx context.Context, value any, inv *Invocation) any
}
