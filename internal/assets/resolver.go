// Package assets materializes referenced files into the content-addressed
// assets output directory and computes their public URLs.
//
// Identity of an asset is its content hash, not its path: two documents
// referencing byte-identical content through different relative paths share
// one output artifact, and the underlying file is written at most once per
// build. The check-then-write sequence is serialized per content hash through
// the build context's in-flight table, so concurrent first references to the
// same bytes share a single write while unrelated hashes proceed in parallel.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/metrics"
)

// Asset is a materialized artifact registered in the build cache.
type Asset struct {
	// Name is the output file name derived from the naming template.
	Name string
	// URL is the public URL the asset is served under.
	URL string
}

// Resolver materializes assets against one build's shared context.
type Resolver struct {
	build    *buildctx.Context
	recorder metrics.Recorder
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) ResolverOption {
	return func(res *Resolver) { res.recorder = r }
}

// NewResolver creates a Resolver bound to the given build context.
func NewResolver(build *buildctx.Context, opts ...ResolverOption) *Resolver {
	r := &Resolver{build: build, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFile materializes the file referenced by ref from the document at
// fromPath and returns its public URL.
func (r *Resolver) ResolveFile(ctx context.Context, ref, fromPath string) (string, error) {
	data, hash, err := r.read(ref, fromPath)
	if err != nil {
		return "", err
	}
	a, err := r.materialize(ctx, hash, ref, data)
	if err != nil {
		return "", err
	}
	return a.URL, nil
}

// read resolves ref relative to the referencing document's directory and
// returns the raw bytes together with their hex content hash.
func (r *Resolver) read(ref, fromPath string) ([]byte, string, error) {
	src := filepath.Join(r.build.ContentDir, filepath.Dir(filepath.FromSlash(fromPath)), filepath.FromSlash(ref))
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", fmt.Errorf("read asset %q: %w", ref, err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// materialize registers the asset under its content hash, writing the output
// file exactly once per unique content.
func (r *Resolver) materialize(ctx context.Context, hash, ref string, data []byte) (*Asset, error) {
	written := false
	v, err := r.build.Once("asset:"+hash, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		written = true

		base := filepath.Base(filepath.FromSlash(ref))
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)

		naming := r.build.Output.Naming
		if naming == "" {
			naming = DefaultNaming
		}
		name := ExpandName(naming, hash, stem, ext)

		if err := os.MkdirAll(r.build.Output.AssetsDir, 0o750); err != nil {
			return nil, fmt.Errorf("create assets dir: %w", err)
		}
		// A leftover file from an aborted build holds identical bytes
		// (the name is content-addressed), so rewriting is harmless.
		if err := os.WriteFile(filepath.Join(r.build.Output.AssetsDir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("write asset %q: %w", name, err)
		}

		return &Asset{Name: name, URL: PublicURL(r.build.Output.Base, name)}, nil
	})
	if err != nil {
		return nil, err
	}
	r.recorder.RecordAsset(written)
	return v.(*Asset), nil
}
