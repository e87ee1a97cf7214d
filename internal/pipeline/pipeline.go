// Package pipeline orchestrates schema application over the files of a
// build: it discovers documents, loads them, runs their collection's field
// schemas, accumulates issues without aborting, and writes validated output.
package pipeline

import (
	"runtime"

	"git.home.luguber.info/inful/contentforge/internal/assets"
	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/content"
	"git.home.luguber.info/inful/contentforge/internal/metrics"
	"git.home.luguber.info/inful/contentforge/internal/schema"
)

// Collection binds a file-matching glob to a schema shape and a loader.
type Collection struct {
	Name   string
	Glob   string
	Shape  map[string]schema.Field
	Loader content.Loader
}

// Pipeline validates the documents of one build against their collections.
type Pipeline struct {
	build       *buildctx.Context
	resolver    *assets.Resolver
	collections []Collection
	recorder    metrics.Recorder
	jobs        int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithJobs bounds the number of files validated concurrently. One job gives
// fully deterministic cross-file ordering for reproducible builds.
func WithJobs(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.jobs = n
		}
	}
}

// New creates a Pipeline over the given build context and collections.
func New(build *buildctx.Context, collections []Collection, opts ...Option) *Pipeline {
	p := &Pipeline{
		build:       build,
		collections: collections,
		recorder:    metrics.NoopRecorder{},
		jobs:        runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = assets.NewResolver(build, assets.WithRecorder(p.recorder))
	return p
}

// Match returns the first collection whose glob matches the slash-separated
// relative path and whose loader accepts the file.
func (p *Pipeline) Match(relPath string) (*Collection, bool) {
	for i := range p.collections {
		col := &p.collections[i]
		if globMatch(col.Glob, relPath) && col.Loader.Match(relPath) {
			return col, true
		}
	}
	return nil, false
}
