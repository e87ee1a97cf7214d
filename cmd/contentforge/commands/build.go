package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/contentforge/internal/config"
	"git.home.luguber.info/inful/contentforge/internal/metrics"
	"git.home.luguber.info/inful/contentforge/internal/observability"
	"git.home.luguber.info/inful/contentforge/internal/schema"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Jobs  int  `short:"j" help:"Files validated concurrently; 1 gives fully deterministic ordering" default:"0"`
	Clean bool `help:"Wipe the assets directory before building"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	pipe, _, err := NewPipeline(cfg, metrics.NoopRecorder{}, b.Jobs)
	if err != nil {
		return fmt.Errorf("assemble pipeline: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = observability.WithBuildID(ctx, uuid.NewString())

	report, err := pipe.Build(ctx)
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		for _, is := range f.Issues {
			fmt.Fprintf(os.Stderr, "%s: %s: %s [%s]\n", is.File, schema.FormatPath(is.Path), is.Message, is.Code)
		}
	}
	fmt.Printf("Built %d files in %s (%d skipped)\n", len(report.Files), report.Duration.Round(time.Millisecond), len(report.Skipped))

	if !report.Valid() {
		return fmt.Errorf("build finished with %d issues", report.TotalIssues())
	}
	return nil
}
