package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/content"
	"git.home.luguber.info/inful/contentforge/internal/pipeline"
	"git.home.luguber.info/inful/contentforge/internal/schema"
	"git.home.luguber.info/inful/contentforge/internal/state"
)

type reportSink struct {
	mu      sync.Mutex
	reports []*pipeline.Report
}

func (s *reportSink) add(r *pipeline.Report) {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
}

func (s *reportSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newTestWatcher(t *testing.T, opts ...Option) (*Watcher, string, *reportSink) {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	require.NoError(t, os.MkdirAll(filepath.Join(contentDir, "posts"), 0o750))

	build := buildctx.New(root, contentDir, buildctx.Output{
		DataDir:   filepath.Join(root, "out", "data"),
		AssetsDir: filepath.Join(root, "out", "assets"),
		Base:      "/static/",
		Naming:    "[name]-[hash:8][ext]",
	})
	pipe := pipeline.New(build, []pipeline.Collection{{
		Name: "posts",
		Glob: "posts/**",
		Shape: map[string]schema.Field{
			"slug": schema.Slug{Namespace: "posts"},
		},
		Loader: content.MarkdownLoader{},
	}}, pipeline.WithJobs(1))

	sink := &reportSink{}
	opts = append([]Option{WithDebounce(50 * time.Millisecond), WithReportHook(sink.add)}, opts...)
	w, err := New(pipe, build, opts...)
	require.NoError(t, err)
	return w, contentDir, sink
}

func TestWatcher_StartRunsInitialFullBuild(t *testing.T) {
	w, contentDir, sink := newTestWatcher(t)
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "a.md"),
		[]byte("---\nslug: first\n---\nA\n"), 0o644))

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.Equal(t, 1, sink.count())
	require.Len(t, sink.reports[0].Files, 1)
}

func TestWatcher_FileChangeTriggersRevalidation(t *testing.T) {
	w, contentDir, sink := newTestWatcher(t)
	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "new.md"),
		[]byte("---\nslug: fresh-post\n---\nBody\n"), 0o644))

	require.Eventually(t, func() bool {
		return sink.count() >= 2
	}, 5*time.Second, 20*time.Millisecond, "write event should produce a revalidation report")
}

func TestWatcher_UnchangedFingerprintSkipsRevalidation(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	w, contentDir, sink := newTestWatcher(t, WithStore(store))
	body := []byte("---\nslug: stable\n---\nBody\n")
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "a.md"), body, 0o644))
	require.NoError(t, store.Record(context.Background(), "posts/a.md", state.HashBytes(body), state.StatusValid))

	w.revalidate(context.Background(), "posts/a.md")
	require.Equal(t, 0, sink.count(), "matching valid fingerprint skips the pipeline")
}

func TestWatcher_ChangedFingerprintRevalidatesAndRecords(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	w, contentDir, sink := newTestWatcher(t, WithStore(store))
	require.NoError(t, w.FullRebuild(context.Background()))

	body := []byte("---\nslug: edited-post\n---\nBody\n")
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "a.md"), body, 0o644))
	require.NoError(t, store.Record(context.Background(), "posts/a.md", "stale-hash", state.StatusValid))

	w.revalidate(context.Background(), "posts/a.md")
	require.Equal(t, 2, sink.count(), "full build plus one revalidation")

	hash, status, ok, err := store.Fingerprint(context.Background(), "posts/a.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, state.HashBytes(body), hash)
	require.Equal(t, state.StatusValid, status)
}

func TestWatcher_InvalidFileRecordedWithIssueStatus(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	w, contentDir, _ := newTestWatcher(t, WithStore(store))
	require.NoError(t, w.FullRebuild(context.Background()))

	body := []byte("---\nslug: \"Not A Slug!\"\n---\nBody\n")
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "bad.md"), body, 0o644))

	w.revalidate(context.Background(), "posts/bad.md")

	_, status, ok, err := store.Fingerprint(context.Background(), "posts/bad.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, state.StatusIssues, status)
}

func TestWatcher_RemoveTriggersFullRebuild(t *testing.T) {
	w, contentDir, sink := newTestWatcher(t)
	target := filepath.Join(contentDir, "posts", "a.md")
	require.NoError(t, os.WriteFile(target, []byte("---\nslug: doomed\n---\nA\n"), 0o644))

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()
	require.Equal(t, 1, sink.count())

	require.NoError(t, os.Remove(target))

	require.Eventually(t, func() bool {
		return sink.count() >= 2
	}, 5*time.Second, 20*time.Millisecond, "remove event should trigger a full rebuild")
}

func TestWatcher_FullRebuildResetsReservations(t *testing.T) {
	w, contentDir, sink := newTestWatcher(t)
	target := filepath.Join(contentDir, "posts", "a.md")
	require.NoError(t, os.WriteFile(target, []byte("---\nslug: taken\n---\nA\n"), 0o644))
	require.NoError(t, w.FullRebuild(context.Background()))

	// Move the slug to a different file; with stale reservations this would
	// report a collision, with a fresh pass it validates cleanly.
	require.NoError(t, os.Remove(target))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "posts", "b.md"),
		[]byte("---\nslug: taken\n---\nB\n"), 0o644))
	require.NoError(t, w.FullRebuild(context.Background()))

	last := sink.reports[sink.count()-1]
	require.Equal(t, 0, last.TotalIssues())
}
