package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentforge/internal/buildctx"
	"git.home.luguber.info/inful/contentforge/internal/content"
	"git.home.luguber.info/inful/contentforge/internal/schema"
)

func newTestPipeline(t *testing.T, collections []Collection, opts ...Option) (*Pipeline, string, buildctx.Output) {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0o750))

	out := buildctx.Output{
		DataDir:   filepath.Join(root, "out", "data"),
		AssetsDir: filepath.Join(root, "out", "assets"),
		Base:      "/static/",
		Naming:    "[name]-[hash:8][ext]",
	}
	build := buildctx.New(root, contentDir, out)
	return New(build, collections, opts...), contentDir, out
}

func postsCollection() Collection {
	return Collection{
		Name: "posts",
		Glob: "posts/**",
		Shape: map[string]schema.Field{
			"slug":    schema.Slug{Namespace: "posts"},
			"date":    schema.Date{},
			"excerpt": schema.Excerpt{Limit: 50},
			"cover":   schema.Image{},
		},
		Loader: content.MarkdownLoader{},
	}
}

func writeFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
	require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
}

func TestBuild_ValidDocumentsProduceJSONOutput(t *testing.T) {
	p, contentDir, out := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/first.md", "---\nslug: first-post\ndate: 2024-03-01\n---\nHello *world*.\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.True(t, report.Valid())
	require.Len(t, report.Files, 1)

	raw, err := os.ReadFile(filepath.Join(out.DataDir, "posts", "first.md.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "first-post", doc["slug"])
	require.Equal(t, "2024-03-01T00:00:00.000Z", doc["date"])
	require.Equal(t, "posts/first.md", doc["_id"])
	require.Equal(t, "posts", doc["_collection"])
	require.Contains(t, doc["content"], "<em>world</em>")
	require.Equal(t, "Hello world.", doc["plain"])
	require.Equal(t, "Hello world.", doc["excerpt"])
}

func TestBuild_DuplicateSlugReportedOnceWithOriginalLocation(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()}, WithJobs(1))
	writeFile(t, contentDir, "posts/a.md", "---\nslug: my-post\n---\nA\n")
	writeFile(t, contentDir, "posts/b.md", "---\nslug: my-post\n---\nB\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalIssues())

	var collision schema.Issue
	for _, f := range report.Files {
		if len(f.Issues) > 0 {
			collision = f.Issues[0]
		}
	}
	require.Equal(t, schema.CodeDuplicate, collision.Code)
	// With one job files process in sorted order, so a.md holds the
	// reservation and b.md is the duplicate.
	require.Equal(t, "posts/b.md", collision.File)
	require.Contains(t, collision.Message, "posts/a.md")
}

func TestBuild_DuplicateSlug_ExactlyOneCollisionRegardlessOfScheduling(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()}, WithJobs(4))
	writeFile(t, contentDir, "posts/a.md", "---\nslug: contended\n---\nA\n")
	writeFile(t, contentDir, "posts/b.md", "---\nslug: contended\n---\nB\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalIssues(), "one success and one collision, whichever task won")

	issue := findDuplicateIssue(t, report)
	require.Equal(t, schema.CodeDuplicate, issue.Code)
}

func findDuplicateIssue(t *testing.T, report *Report) schema.Issue {
	t.Helper()
	for _, f := range report.Files {
		for _, is := range f.Issues {
			if is.Code == schema.CodeDuplicate {
				return is
			}
		}
	}
	t.Fatal("no duplicate issue found")
	return schema.Issue{}
}

func TestBuild_InvalidDocumentKeepsSiblingsAndSkipsOutput(t *testing.T) {
	p, contentDir, out := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/bad.md", "---\nslug: \"Bad Slug!\"\ndate: bogus\n---\nBody\n")
	writeFile(t, contentDir, "posts/good.md", "---\nslug: good-post\n---\nBody\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalIssues(), "both invalid fields of bad.md reported")

	_, err = os.Stat(filepath.Join(out.DataDir, "posts", "bad.md.json"))
	require.True(t, os.IsNotExist(err), "invalid document is not written")
	_, err = os.Stat(filepath.Join(out.DataDir, "posts", "good.md.json"))
	require.NoError(t, err, "issues in one file never block another")
}

func TestBuild_MissingImageNullsFieldWithSingleIssue(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/a.md", "---\nslug: with-image\ncover: ./nope.png\n---\nBody\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	result := report.Files[0]
	require.Len(t, result.Issues, 1)
	require.Equal(t, []any{"cover"}, result.Issues[0].Path)
	require.Nil(t, result.Value["cover"], "field resolves to null")
	require.Equal(t, "with-image", result.Value["slug"], "partial value still computed")
}

func TestBuild_SharedAssetWrittenOnceAcrossFiles(t *testing.T) {
	p, contentDir, out := newTestPipeline(t, []Collection{{
		Name: "posts",
		Glob: "posts/**",
		Shape: map[string]schema.Field{
			"attachment": schema.File{},
		},
		Loader: content.MarkdownLoader{},
	}})
	writeFile(t, contentDir, "posts/shared.bin", "identical bytes")
	writeFile(t, contentDir, "posts/deep/shared-copy.bin", "identical bytes")
	writeFile(t, contentDir, "posts/a.md", "---\nattachment: ./shared.bin\n---\nA\n")
	writeFile(t, contentDir, "posts/b.md", "---\nattachment: ./deep/shared-copy.bin\n---\nB\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.True(t, report.Valid())

	entries, err := os.ReadDir(out.AssetsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "byte-identical content materializes once")
}

func TestBuild_MalformedFrontmatterIsPerFileIssue(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/broken.md", "---\nslug: x\nno closing delimiter\n")
	writeFile(t, contentDir, "posts/fine.md", "---\nslug: fine-post\n---\nBody\n")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	issue := report.Files[0].Issues
	require.Len(t, issue, 1)
	require.Equal(t, schema.CodeParse, issue[0].Code)
}

func TestBuild_UnmatchedFilesAreSkipped(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/a.md", "---\nslug: a-post\n---\nA\n")
	writeFile(t, contentDir, "notes/readme.txt", "not content")

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.Equal(t, []string{"notes/readme.txt"}, report.Skipped)
}

func TestBuild_CleanWipesAssetsDir(t *testing.T) {
	p, contentDir, out := newTestPipeline(t, []Collection{postsCollection()})
	p.build.Output.Clean = true
	_ = contentDir

	stale := filepath.Join(out.AssetsDir, "stale.bin")
	require.NoError(t, os.MkdirAll(out.AssetsDir, 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := p.Build(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}

func TestBuild_CancelledContextReturnsError(t *testing.T) {
	p, contentDir, _ := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/a.md", "---\nslug: a-post\n---\nA\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile_RevalidatesSingleDocument(t *testing.T) {
	p, contentDir, out := newTestPipeline(t, []Collection{postsCollection()})
	writeFile(t, contentDir, "posts/a.md", "---\nslug: single-run\n---\nA\n")
	require.NoError(t, os.MkdirAll(out.DataDir, 0o750))
	require.NoError(t, os.MkdirAll(out.AssetsDir, 0o750))

	result, matched := p.ProcessFile(context.Background(), "posts/a.md")
	require.True(t, matched)
	require.True(t, result.Valid())

	_, matched = p.ProcessFile(context.Background(), "notes/x.txt")
	require.False(t, matched)
}

func TestValidateDocument_TwoInvalidFieldsTwoIssues(t *testing.T) {
	p, _, _ := newTestPipeline(t, []Collection{postsCollection()})

	doc := &content.Document{
		Path: "posts/a.md",
		Fields: map[string]any{
			"slug": "Nope Not Valid!",
			"date": "bogus",
		},
	}
	result := p.ValidateDocument(context.Background(), doc, postsCollection().Shape)
	require.Len(t, result.Issues, 2)
	require.Equal(t, "posts/a.md", result.Issues[0].File)
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		glob, path string
		want       bool
	}{
		{"posts/*.md", "posts/a.md", true},
		{"posts/*.md", "posts/sub/a.md", false},
		{"posts/**", "posts/sub/a.md", true},
		{"**/*.md", "deep/nested/a.md", true},
		{"*.md", "a.md", true},
		{"*.md", "posts/a.md", false},
		{"posts/?.md", "posts/a.md", true},
		{"posts/?.md", "posts/ab.md", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, globMatch(tc.glob, tc.path), "%s vs %s", tc.glob, tc.path)
	}
}
