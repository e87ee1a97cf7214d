// Package watch keeps build output synchronized with the content directory:
// file events trigger debounced single-file revalidation, structural changes
// and an optional timer trigger full rebuilds with fresh shared state.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/observability"
	"git.home.luguber.info/inful/contentforge/internal/pipeline"
	"git.home.luguber.info/inful/contentforge/internal/state"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher revalidates documents as they change on disk.
type Watcher struct {
	pipe  *pipeline.Pipeline
	build *buildctx.Context
	store *state.Store

	fw        *fsnotify.Watcher
	scheduler gocron.Scheduler

	debounce     time.Duration
	rebuildEvery time.Duration

	mu       sync.Mutex
	pending  map[string]struct{}
	stopChan chan struct{}
	kickChan chan struct{}

	onReport func(*pipeline.Report)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithStore enables fingerprint-based skipping of unchanged files.
func WithStore(s *state.Store) Option {
	return func(w *Watcher) { w.store = s }
}

// WithDebounce overrides the event settle window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRebuildEvery schedules periodic full rebuilds. Zero disables them.
func WithRebuildEvery(d time.Duration) Option {
	return func(w *Watcher) { w.rebuildEvery = d }
}

// WithReportHook registers a callback invoked after every build or
// revalidation pass.
func WithReportHook(fn func(*pipeline.Report)) Option {
	return func(w *Watcher) { w.onReport = fn }
}

// New creates a Watcher over the pipeline's content directory.
func New(pipe *pipeline.Pipeline, build *buildctx.Context, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		pipe:     pipe,
		build:    build,
		fw:       fw,
		debounce: defaultDebounce,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
		kickChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start runs an initial full build, then begins watching. It returns after
// the goroutines are launched; Stop tears them down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.FullRebuild(ctx); err != nil {
		return err
	}
	if err := w.addDirs(w.build.ContentDir); err != nil {
		return fmt.Errorf("watch content dir: %w", err)
	}

	observability.InfoContext(ctx, "watching for changes",
		slog.String("dir", w.build.ContentDir),
		slog.Duration("debounce", w.debounce))

	go w.watchLoop(ctx)
	go w.flushLoop(ctx)

	if w.rebuildEvery > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(w.rebuildEvery),
			gocron.NewTask(func() {
				if err := w.FullRebuild(ctx); err != nil {
					observability.ErrorContext(ctx, "scheduled rebuild failed", slog.Any("error", err))
				}
			}),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		scheduler.Start()
		w.scheduler = scheduler
	}
	return nil
}

// Stop shuts down the watcher and its scheduler.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Error("scheduler shutdown", "error", err)
		}
	}
	return w.fw.Close()
}

// FullRebuild resets shared build state and runs the whole pipeline. Stale
// reservations from previous passes never survive a full rebuild.
func (w *Watcher) FullRebuild(ctx context.Context) error {
	w.build.Reset()
	report, err := w.pipe.Build(ctx)
	if err != nil {
		return err
	}
	if w.onReport != nil {
		w.onReport(report)
	}
	return nil
}

func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fw.Add(path)
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			observability.ErrorContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(event.Name); err != nil {
				observability.ErrorContext(ctx, "watch new dir", slog.Any("error", err))
			}
			return
		}
		w.enqueue(event.Name)
	case event.Op.Has(fsnotify.Write):
		w.enqueue(event.Name)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// A removed file may have held reservations other files now need;
		// only a full pass with fresh state gives the right answer.
		w.forget(ctx, event.Name)
		w.enqueueRebuild()
	}
}

func (w *Watcher) enqueue(absPath string) {
	rel, err := filepath.Rel(w.build.ContentDir, absPath)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	w.mu.Unlock()
	w.kick()
}

func (w *Watcher) enqueueRebuild() {
	w.mu.Lock()
	w.pending["*"] = struct{}{}
	w.mu.Unlock()
	w.kick()
}

func (w *Watcher) kick() {
	select {
	case w.kickChan <- struct{}{}:
	default:
	}
}

// flushLoop drains pending changes once events settle for the debounce
// window.
func (w *Watcher) flushLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.kickChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.flush(ctx)
		}
	}
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if _, full := batch["*"]; full {
		if err := w.FullRebuild(ctx); err != nil {
			observability.ErrorContext(ctx, "rebuild failed", slog.Any("error", err))
		}
		return
	}
	for rel := range batch {
		w.revalidate(ctx, rel)
	}
}

// revalidate runs one file through the pipeline, skipping it when its
// fingerprint matches the last valid run.
func (w *Watcher) revalidate(ctx context.Context, rel string) {
	raw, err := os.ReadFile(filepath.Join(w.build.ContentDir, filepath.FromSlash(rel)))
	if err != nil {
		w.forget(ctx, rel)
		return
	}

	hash := state.HashBytes(raw)
	if w.store != nil {
		stored, status, ok, err := w.store.Fingerprint(ctx, rel)
		if err != nil {
			observability.ErrorContext(ctx, "fingerprint lookup failed", slog.Any("error", err))
		} else if ok && stored == hash && status == state.StatusValid {
			observability.DebugContext(ctx, "unchanged, skipping", slog.String("file", rel))
			return
		}
	}

	result, matched := w.pipe.ProcessFile(ctx, rel)
	if !matched {
		return
	}
	observability.InfoContext(ctx, "revalidated",
		slog.String("file", rel),
		slog.Int("issues", len(result.Issues)))

	if w.store != nil {
		status := state.StatusValid
		if !result.Valid() {
			status = state.StatusIssues
		}
		if err := w.store.Record(ctx, rel, hash, status); err != nil {
			observability.ErrorContext(ctx, "fingerprint record failed", slog.Any("error", err))
		}
	}
	if w.onReport != nil {
		w.onReport(&pipeline.Report{Files: []*pipeline.FileResult{result}})
	}
}

func (w *Watcher) forget(ctx context.Context, name string) {
	if w.store == nil {
		return
	}
	rel := name
	if filepath.IsAbs(name) {
		r, err := filepath.Rel(w.build.ContentDir, name)
		if err != nil {
			return
		}
		rel = r
	}
	if err := w.store.Forget(ctx, filepath.ToSlash(rel)); err != nil {
		observability.ErrorContext(ctx, "fingerprint forget failed", slog.Any("error", err))
	}
}
