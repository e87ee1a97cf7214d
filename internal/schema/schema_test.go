package schema

import (
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/contentforge/internal/assets"
	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/content"
)

// testInvocation builds an invocation against a fresh build context and
// returns the collected issues slice for inspection.
func testInvocation(t *testing.T, doc *content.Document) (*Invocation, *[]Issue) {
	t.Helper()
	root := t.TempDir()
	build := buildctx.New(root, filepath.Join(root, "content"), buildctx.Output{
		AssetsDir: filepath.Join(root, "out", "assets"),
		Base:      "/static/",
	})
	return invocationFor(build, doc)
}

func invocationFor(build *buildctx.Context, doc *content.Document) (*Invocation, *[]Issue) {
	issues := &[]Issue{}
	inv := &Invocation{
		Doc:    doc,
		Build:  build,
		Assets: assets.NewResolver(build),
		Path:   []any{"field"},
		Report: func(is Issue) { *issues = append(*issues, is) },
	}
	return inv, issues
}
