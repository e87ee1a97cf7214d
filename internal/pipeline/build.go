package pipeline

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/contentforge/internal/content"
	forgeerrors "git.home.luguber.info/inful/contentforge/internal/errors"
	"git.home.luguber.info/inful/contentforge/internal/observability"
	"git.home.luguber.info/inful/contentforge/internal/schema"
)

// Report aggregates the outcome of one build run.
type Report struct {
	Files    []*FileResult
	Skipped  []string
	Duration time.Duration
}

// TotalIssues counts issues across all files.
func (r *Report) TotalIssues() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Issues)
	}
	return n
}

// Valid reports whether no file collected any issue.
func (r *Report) Valid() bool {
	return r.TotalIssues() == 0
}

// Build runs the full pipeline: discover documents under the content dir,
// validate each against its collection, and write validated output. Files
// are discovered in sorted path order so cross-file reservation reporting is
// reproducible; issues never stop processing of other files.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := p.prepareOutput(); err != nil {
		p.recorder.RecordBuild(time.Since(start), "failed")
		return nil, err
	}

	paths, skipped, err := p.discover()
	if err != nil {
		p.recorder.RecordBuild(time.Since(start), "failed")
		return nil, forgeerrors.BuildFailed("discover", err)
	}

	// Files are handed to workers in sorted order; with a single job the
	// whole build is processed in canonical order, which makes duplicate
	// reporting fully deterministic.
	results := make([]*FileResult, len(paths))
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				results[i] = p.processFile(ctx, paths[i])
			}
		}()
	}
	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		p.recorder.RecordBuild(time.Since(start), "cancelled")
		return nil, err
	}

	report := &Report{Skipped: skipped, Duration: time.Since(start)}
	for _, r := range results {
		if r != nil {
			report.Files = append(report.Files, r)
		}
	}

	outcome := "ok"
	if !report.Valid() {
		outcome = "issues"
	}
	p.recorder.RecordBuild(report.Duration, outcome)
	observability.InfoContext(ctx, "build finished",
		slog.Int("files", len(report.Files)),
		slog.Int("issues", report.TotalIssues()),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// ProcessFile loads and validates a single document by its slash-separated
// path relative to the content dir, writing output when valid. Used by watch
// mode for single-file revalidation.
func (p *Pipeline) ProcessFile(ctx context.Context, relPath string) (*FileResult, bool) {
	if _, ok := p.Match(relPath); !ok {
		return nil, false
	}
	return p.processFile(ctx, relPath), true
}

func (p *Pipeline) processFile(ctx context.Context, relPath string) *FileResult {
	ctx = observability.WithFile(ctx, relPath)
	col, _ := p.Match(relPath)
	ctx = observability.WithCollection(ctx, col.Name)

	raw, err := os.ReadFile(filepath.Join(p.build.ContentDir, filepath.FromSlash(relPath)))
	if err != nil {
		return p.failedLoad(relPath, col, err)
	}

	doc, err := col.Loader.Load(relPath, raw)
	if err != nil {
		return p.failedLoad(relPath, col, err)
	}
	doc.Collection = col.Name

	result := p.ValidateDocument(ctx, doc, col.Shape)
	p.recorder.RecordDocument(col.Name, result.Valid())

	if result.Valid() {
		if err := p.writeOutput(doc, result.Value); err != nil {
			observability.ErrorContext(ctx, "write output failed", slog.Any("error", err))
			result.Issues = append(result.Issues, schema.Issue{
				Code: schema.CodeAsset, Message: err.Error(), File: relPath,
			})
		}
	} else {
		observability.WarnContext(ctx, "document has issues", slog.Int("count", len(result.Issues)))
	}
	return result
}

func (p *Pipeline) failedLoad(relPath string, col *Collection, err error) *FileResult {
	p.recorder.RecordDocument(col.Name, false)
	p.recorder.RecordIssue(schema.CodeParse)
	return &FileResult{
		Doc: &content.Document{Path: relPath, Collection: col.Name},
		Issues: schema.Issues{{
			Code: schema.CodeParse, Message: err.Error(), File: relPath,
		}},
	}
}

// discover walks the content dir and returns matching files in sorted path
// order, plus the files no collection claimed.
func (p *Pipeline) discover() (matched, skipped []string, err error) {
	root := p.build.ContentDir
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath := filepath.ToSlash(rel)
		if _, ok := p.Match(relPath); ok {
			matched = append(matched, relPath)
		} else {
			skipped = append(skipped, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(matched)
	return matched, skipped, nil
}

func (p *Pipeline) prepareOutput() error {
	out := p.build.Output
	if out.Clean {
		if err := os.RemoveAll(out.AssetsDir); err != nil {
			return forgeerrors.OutputError("clean assets dir", err)
		}
	}
	for _, dir := range []string{out.DataDir, out.AssetsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return forgeerrors.OutputError("create output dir", err)
		}
	}
	return nil
}

// writeOutput persists a validated document as JSON under the data dir,
// mirroring the source path.
func (p *Pipeline) writeOutput(doc *content.Document, value map[string]any) error {
	out := make(map[string]any, len(value)+4)
	for k, v := range value {
		out[k] = v
	}
	out["_id"] = doc.Path
	out["_collection"] = doc.Collection
	out["content"] = doc.HTML
	out["plain"] = doc.Plain

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	target := filepath.Join(p.build.Output.DataDir, filepath.FromSlash(doc.Path)+".json")
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	return os.WriteFile(target, append(data, '\n'), 0o644)
}
