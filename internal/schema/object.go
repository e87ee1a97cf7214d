package schema

import (
	"context"
	"sort"
)

// Object validates a nested object shape. Sub-fields recurse with their key
// merged into the issue path; raw keys without a declared field pass through
// untouched. All declared fields run even when earlier ones report issues.
type Object struct {
	Fields map[string]Field
}

func (o Object) Apply(ctx context.Context, value any, inv *Invocation) any {
	if value == nil {
		value = map[string]any{}
	}
	raw, ok := value.(map[string]any)
	if !ok {
		inv.Issuef(CodeInvalidType, "expected object, got %T", value)
		return nil
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, declared := o.Fields[k]; !declared {
			out[k] = v
		}
	}

	// Deterministic application order keeps cross-file reservation
	// reporting stable within one document.
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out[k] = o.Fields[k].Apply(ctx, raw[k], inv.Child(k))
	}
	return out
}

// List validates a homogeneous list, recursing into each element with its
// index merged into the issue path.
type List struct {
	Of Field
}

func (l List) Apply(ctx context.Context, value any, inv *Invocation) any {
	if value == nil {
		return nil
	}
	raw, ok := value.([]any)
	if !ok {
		inv.Issuef(CodeInvalidType, "expected list, got %T", value)
		return nil
	}

	out := make([]any, len(raw))
	for i, v := range raw {
		out[i] = l.Of.Apply(ctx, v, inv.Child(i))
	}
	return out
}
