package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/contentforge/internal/config"
	"git.home.luguber.info/inful/contentforge/internal/metrics"
	"git.home.luguber.info/inful/contentforge/internal/observability"
	"git.home.luguber.info/inful/contentforge/internal/state"
	"git.home.luguber.info/inful/contentforge/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Jobs         int           `short:"j" help:"Files validated concurrently during full builds" default:"0"`
	Debounce     time.Duration `help:"Settle window before changed files are revalidated" default:"500ms"`
	RebuildEvery time.Duration `name:"rebuild-every" help:"Force a periodic full rebuild (0 disables)"`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	StateDB      string        `name:"state-db" help:"Fingerprint database path, relative to root" default:".contentforge/state.db"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			slog.Info("Serving metrics", "addr", w.MetricsAddr)
			if err := http.ListenAndServe(w.MetricsAddr, mux); err != nil {
				slog.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	pipe, build, err := NewPipeline(cfg, recorder, w.Jobs)
	if err != nil {
		return fmt.Errorf("assemble pipeline: %w", err)
	}

	store, err := openStore(cfg, w.StateDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close state store", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = observability.WithBuildID(ctx, uuid.NewString())

	watcher, err := watch.New(pipe, build,
		watch.WithStore(store),
		watch.WithDebounce(w.Debounce),
		watch.WithRebuildEvery(w.RebuildEvery),
	)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping watcher")
	return watcher.Stop()
}

func openStore(cfg *config.Config, dbPath string) (*state.Store, error) {
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Root, dbPath)
	}
	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	store, err := state.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return store, nil
}
