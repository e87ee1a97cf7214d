package pipeline

import (
	"context"
	"sort"
	"sync"

	"git.home.luguber.info/inful/contentforge/internal/content"
	"git.home.luguber.info/inful/contentforge/internal/schema"
)

// FileResult is the outcome of validating one document: the (possibly
// partial) transformed value plus every issue collected across all fields.
type FileResult struct {
	Doc    *content.Document
	Value  map[string]any
	Issues schema.Issues
}

// Valid reports whether zero issues were collected, transitively.
func (r *FileResult) Valid() bool {
	return len(r.Issues) == 0
}

// ValidateDocument applies the collection's shape to one document. Every
// declared field runs as its own task; all tasks are joined before returning
// so issues from synchronous and asynchronous fields alike are collected.
// Undeclared raw fields pass through untouched.
func (p *Pipeline) ValidateDocument(ctx context.Context, doc *content.Document, shape map[string]schema.Field) *FileResult {
	result := &FileResult{Doc: doc, Value: make(map[string]any, len(doc.Fields))}

	for k, v := range doc.Fields {
		if _, declared := shape[k]; !declared {
			result.Value[k] = v
		}
	}

	var mu sync.Mutex
	report := func(is schema.Issue) {
		is.File = doc.Path
		mu.Lock()
		result.Issues = append(result.Issues, is)
		mu.Unlock()
	}

	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k string, field schema.Field) {
			defer wg.Done()
			inv := &schema.Invocation{
				Doc:    doc,
				Build:  p.build,
				Assets: p.resolver,
				Path:   []any{k},
				Report: report,
			}
			v := field.Apply(ctx, doc.Fields[k], inv)
			mu.Lock()
			result.Value[k] = v
			mu.Unlock()
		}(k, shape[k])
	}
	wg.Wait()

	// Deterministic issue order regardless of field task scheduling.
	sort.SliceStable(result.Issues, func(i, j int) bool {
		return schema.FormatPath(result.Issues[i].Path) < schema.FormatPath(result.Issues[j].Path)
	})

	for _, is := range result.Issues {
		p.recorder.RecordIssue(is.Code)
	}
	return result
}
