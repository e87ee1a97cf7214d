package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/config"
	"git.home.luguber.info/inful/contentforge/internal/content"
	"git.home.luguber.info/inful/contentforge/internal/metrics"
	"git.home.luguber.info/inful/contentforge/internal/pipeline"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"contentforge.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Validate all content and write build output"`
	Watch WatchCmd `cmd:"" help:"Build once, then revalidate files as they change"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// NewPipeline assembles the validation pipeline from a loaded configuration.
func NewPipeline(cfg *config.Config, recorder metrics.Recorder, jobs int) (*pipeline.Pipeline, *buildctx.Context, error) {
	collections := make([]pipeline.Collection, 0, len(cfg.Collections))
	for _, cc := range cfg.Collections {
		shape, err := config.BuildShape(cc.Fields)
		if err != nil {
			return nil, nil, err
		}
		collections = append(collections, pipeline.Collection{
			Name:   cc.Name,
			Glob:   cc.Glob,
			Shape:  shape,
			Loader: content.MarkdownLoader{},
		})
	}

	build := buildctx.New(cfg.Root, cfg.ContentDir(), cfg.BuildOutput())
	opts := []pipeline.Option{pipeline.WithRecorder(recorder)}
	if jobs > 0 {
		opts = append(opts, pipeline.WithJobs(jobs))
	}
	return pipeline.New(build, collections, opts...), build, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o750)
}
