package schema

import (
	"context"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/contentforge/internal/assets"
)

// File validates a file reference: remote references pass through unchanged
// (allowed by default), local references are materialized through the asset
// resolver and replaced by their public URL.
type File struct {
	// DisallowRemote rejects non-relative references instead of passing
	// them through.
	DisallowRemote bool
}

func (f File) Apply(ctx context.Context, value any, inv *Invocation) any {
	ref, ok, done := coerceRef(value, inv, !f.DisallowRemote)
	if done {
		return ref
	}
	if !ok {
		return nil
	}

	u, err := inv.Assets.ResolveFile(ctx, ref.(string), inv.Doc.Path)
	if err != nil {
		inv.Issuef(CodeAsset, "%v", err)
		return nil
	}
	return u
}

// Image validates an image reference. Unlike File, remote references are
// rejected by default: images are expected to be locally managed assets so
// dimensions and placeholders can be computed.
type Image struct {
	AllowRemote bool
}

func (i Image) Apply(ctx context.Context, value any, inv *Invocation) any {
	if img, ok := value.(*assets.Image); ok {
		// Already materialized; re-validation is a no-op.
		return img
	}
	ref, ok, done := coerceRef(value, inv, i.AllowRemote)
	if done {
		return ref
	}
	if !ok {
		return nil
	}

	img, err := inv.Assets.ResolveImage(ctx, ref.(string), inv.Doc.Path)
	if err != nil {
		inv.Issuef(CodeAsset, "%v", err)
		return nil
	}
	return img
}

// coerceRef normalizes the raw value for both reference fields. done reports
// that the returned value is final (nil value, or a remote reference passed
// through); ok reports that ref holds a local relative reference to resolve.
func coerceRef(value any, inv *Invocation, allowRemote bool) (ref any, ok, done bool) {
	if value == nil {
		return nil, false, true
	}
	str, isStr := value.(string)
	if !isStr {
		inv.Issuef(CodeInvalidType, "expected string, got %T", value)
		return nil, false, true
	}
	if isRemote(str) {
		if allowRemote {
			return str, false, true
		}
		inv.Issuef(CodeAsset, "reference %q is not relative; only locally managed assets are allowed", str)
		return nil, false, true
	}
	return str, true, false
}

// isRemote reports whether ref does not resolve relative to the referencing
// document: an absolute URL, a protocol-relative URL, or a root-absolute path.
func isRemote(ref string) bool {
	if strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}
