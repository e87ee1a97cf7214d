// Package buildctx holds the shared state of a single build run.
//
// A Context is created once per build, passed by reference into every schema
// invocation, and discarded when the build finishes. The cache it carries is
// the only structure mutated by more than one concurrent validation task, so
// all mutation goes through the three entry points Reserve, Lookup and
// Register, plus the per-key memoization Once.
package buildctx

import (
	"sync"
)

// Output is the resolved output configuration for a build.
type Output struct {
	// DataDir receives validated document JSON.
	DataDir string
	// AssetsDir receives materialized binary assets.
	AssetsDir string
	// Base is the public base path assets are served under. One of "/",
	// "/x/", "./x/" or a full origin like "https://cdn.example.com/x/".
	Base string
	// Naming is the asset file naming template with [name], [hash:N] and
	// [ext] tokens.
	Naming string
	// Clean wipes the assets directory before the build.
	Clean bool
}

// Context is the shared per-build state.
type Context struct {
	Root       string
	ContentDir string
	Output     Output

	mu      sync.Mutex
	cache   map[string]any
	pending map[string]*inflight
}

type inflight struct {
	done chan struct{}
	val  any
	err  error
}

// New creates a fresh Context for one build run.
func New(root, contentDir string, out Output) *Context {
	return &Context{
		Root:       root,
		ContentDir: contentDir,
		Output:     out,
		cache:      make(map[string]any),
		pending:    make(map[string]*inflight),
	}
}

// Reset clears all cached state. Callers that keep a Context alive across a
// watch session must call Reset before a full rebuild so uniqueness
// reservations from deleted or renamed files do not linger.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]any)
	c.pending = make(map[string]*inflight)
}

// Lookup returns the cached value for key, if any.
func (c *Context) Lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

// Register stores value under key, overwriting any previous entry.
func (c *Context) Register(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = value
}

// Once memoizes fn per key. The first caller for a key runs fn; concurrent
// callers for the same key block until that run finishes and share its
// result. Unrelated keys proceed independently. Failed runs are not cached,
// so a later caller retries.
func (c *Context) Once(key string, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	if v, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	if fl, ok := c.pending[key]; ok {
		c.mu.Unlock()
		<-fl.done
		return fl.val, fl.err
	}
	fl := &inflight{done: make(chan struct{})}
	c.pending[key] = fl
	c.mu.Unlock()

	fl.val, fl.err = fn()

	c.mu.Lock()
	delete(c.pending, key)
	if fl.err == nil {
		c.cache[key] = fl.val
	}
	c.mu.Unlock()
	close(fl.done)
	return fl.val, fl.err
}
