package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/page"
)

func baseMeta(collections map[string]any) page.Metadata {
	meta := page.NewSiteDefaults(page.DefaultsOptions{}).Fresh()
	meta["title"] = "Blog"
	meta["url"] = "blog"
	meta["filepath"] = "blog/index.html"
	meta["basefile"] = "blog/index.html"
	meta["collections"] = collections
	return meta
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec(map[string]any{"data_file": "posts", "url": "/p/{slug}"})
	require.NoError(t, err)
	require.Equal(t, DataFile{Name: "posts"}, spec.Source)
	require.Equal(t, "/p/{slug}", spec.Permalink)

	spec, err = ParseSpec(map[string]any{"content_dir": "articles"})
	require.NoError(t, err)
	require.Equal(t, ContentDir{Path: "articles"}, spec.Source)

	_, err = ParseSpec(map[string]any{"url": "/x"})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestExpandDataFileCardinality(t *testing.T) {
	data := map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"title": "One", "slug": "one"}, "content": "first"},
		map[string]any{"meta": map[string]any{"title": "Two", "slug": "two"}, "content": "second"},
		map[string]any{"meta": map[string]any{"title": "Three", "slug": "three"}, "content": "<template>third</template><script>x</script>"},
	}}
	e := &Expander{Data: data}

	jobs, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "/blog/{slug}/"}), "<main>%%COLLECTION_CONTENT%%</main>")
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	urls := map[string]bool{}
	for _, job := range jobs {
		urls[job.Meta.URL()] = true
		shared, ok := job.Meta["collections"].([]any)
		require.True(t, ok)
		require.Len(t, shared, 3)
	}
	require.Len(t, urls, 3)

	require.Equal(t, "/blog/one/", jobs[0].Filepath)
	require.Equal(t, "blog/one", jobs[0].Meta.URL())
	require.Equal(t, "One", jobs[0].Meta.Title())
	require.Equal(t, "<main>first</main>", jobs[0].Content)
	require.Equal(t, "<main>third</main>", jobs[2].Content)

	// Every derived page sees the same list, in source order.
	first := jobs[0].Meta["collections"].([]any)
	last := jobs[2].Meta["collections"].([]any)
	require.Equal(t, first, last)
	require.Equal(t, "Two", first[1].(map[string]any)["title"])
	_, nested := first[0].(map[string]any)["collections"]
	require.False(t, nested)
}

func TestExpandDoesNotMutateBase(t *testing.T) {
	base := baseMeta(map[string]any{"data_file": "posts", "url": "/b/{slug}"})
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"slug": "a", "title": "A"}},
	}}}
	_, err := e.Expand(base, "x")
	require.NoError(t, err)
	require.Equal(t, "Blog", base.Title())
	require.Equal(t, "blog", base.URL())
	_, isSpec := base["collections"].(map[string]any)
	require.True(t, isSpec)
}

func TestExpandSynthesizesPermalink(t *testing.T) {
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"url": "hello"}},
	}}}
	jobs, err := e.Expand(baseMeta(map[string]any{"data_file": "posts"}), "x")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "/blog/hello", jobs[0].Filepath)
	require.Equal(t, "blog/hello", jobs[0].Meta.URL())
}

func TestExpandTwoPassPermalink(t *testing.T) {
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"section": "{year}/news", "year": 2024, "slug": "launch"}},
	}}}
	jobs, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "/{section}/{slug}/{missing}"}), "x")
	require.NoError(t, err)
	require.Equal(t, "/{year}/news/launch/{missing}", jobs[0].Filepath)
	require.Equal(t, "2024/news/launch/{missing}", jobs[0].Meta.URL())
}

func TestExpandMissingDataFileIsFatal(t *testing.T) {
	_, err := (&Expander{Data: map[string]any{}}).Expand(baseMeta(map[string]any{"data_file": "nope"}), "x")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCollection))
	ce, _ := ferrors.AsClassified(err)
	require.True(t, ce.IsFatal())
}

func TestExpandRejectsItemWithoutMeta(t *testing.T) {
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"slug": "first", "title": "First"},
	}}}
	_, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "/blog/{slug}/"}), "x")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCollection))
	require.Contains(t, err.Error(), "no meta object")
}

func TestExpandRejectsCollidingPermalinks(t *testing.T) {
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"title": "A", "section": "news"}},
		map[string]any{"meta": map[string]any{"title": "B", "section": "news"}},
	}}}
	_, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "/blog/{section}/"}), "x")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCollection))
	require.Contains(t, err.Error(), "items 0 and 1 both resolve to blog/news/index.html")
}

func TestExpandLeavesNilPlaceholders(t *testing.T) {
	// The site defaults declare slug without a value.
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"title": "A", "n": 1}},
		map[string]any{"meta": map[string]any{"title": "B", "n": 2}},
	}}}
	jobs, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "/blog/{slug}/{n}"}), "x")
	require.NoError(t, err)
	require.Equal(t, "/blog/{slug}/1", jobs[0].Filepath)
	require.Equal(t, "/blog/{slug}/2", jobs[1].Filepath)
}

func TestExpandKeepsBaseAssets(t *testing.T) {
	base := baseMeta(map[string]any{"data_file": "posts", "url": "/blog/{slug}/"})
	base.SetAssets([]page.AssetRef{{URL: "pages_assets__/blog-html_tok.js"}}, nil)
	e := &Expander{Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"slug": "a", "assets": map[string]any{"scripts": []any{"other.js"}}}},
	}}}
	jobs, err := e.Expand(base, "x")
	require.NoError(t, err)
	scripts := jobs[0].Meta.Scripts()
	require.Len(t, scripts, 1)
	require.Equal(t, "pages_assets__/blog-html_tok.js", scripts[0].URL)
}

func TestExpandMarkdownItems(t *testing.T) {
	e := &Expander{Markdown: markdown.New(), Data: map[string]any{"posts": []any{
		map[string]any{"meta": map[string]any{"slug": "a"}, "content": "# Title", "markup": "md"},
		map[string]any{"meta": map[string]any{"slug": "b"}, "content": "# Raw"},
	}}}
	jobs, err := e.Expand(baseMeta(map[string]any{"data_file": "posts", "url": "{slug}"}), "%%COLLECTION_CONTENT%%")
	require.NoError(t, err)
	require.Contains(t, jobs[0].Content, "<h1")
	require.Equal(t, "# Raw", jobs[1].Content)
}

func writeFile(t *testing.T, p, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func TestExpandContentDir(t *testing.T) {
	contentRoot := t.TempDir()
	writeFile(t, filepath.Join(contentRoot, "articles", "a-first.md"), "---\ntitle: First\n---\nHello *one*")
	writeFile(t, filepath.Join(contentRoot, "articles", "b-second.html"), "---\ntitle: Second\n---\n<p>two</p>")

	scanner := page.NewScanner(page.NewResolver(page.NewSiteDefaults(page.DefaultsOptions{})))
	e := &Expander{ContentRoot: contentRoot, Scanner: scanner, Markdown: markdown.New()}

	jobs, err := e.Expand(baseMeta(map[string]any{"content_dir": "articles", "url": "/articles/{url}/"}), "[%%COLLECTION_CONTENT%%]")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "/articles/a-first/", jobs[0].Filepath)
	require.Equal(t, "First", jobs[0].Meta.Title())
	require.Contains(t, jobs[0].Content, "<em>one</em>")
	require.Equal(t, "[<p>two</p>]", jobs[1].Content)

	// The producer is restartable and sees new files.
	items, err := e.Items(ContentDir{Path: "articles"})
	require.NoError(t, err)
	writeFile(t, filepath.Join(contentRoot, "articles", "c-third.md"), "three")
	n := 0
	for _, err := range items {
		require.NoError(t, err)
		n++
	}
	require.Equal(t, 3, n)
}

func TestExpandMissingContentDirIsFatal(t *testing.T) {
	e := &Expander{ContentRoot: t.TempDir()}
	_, err := e.Expand(baseMeta(map[string]any{"content_dir": "missing"}), "x")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCollection))
}

func TestFormatPermalink(t *testing.T) {
	meta := map[string]any{"slug": "x", "n": 3, "empty": nil}
	require.Equal(t, "/p/x/3/{empty}/{other}", FormatPermalink("/p/{slug}/{n}/{empty}/{other}", meta))
}

func TestLoadDataFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "posts.json"), `[{"meta":{"title":"a"}}]`)
	writeFile(t, filepath.Join(dir, "nested", "site.json"), `{"nav":{"items":[{"label":"Home"}]}}`)
	writeFile(t, filepath.Join(dir, "readme.txt"), "skip")

	data, err := LoadDataFiles(dir)
	require.NoError(t, err)
	require.Len(t, data, 2)
	require.Len(t, data["posts"], 1)
	v, ok := data["site"].(map[string]any)
	require.True(t, ok)
	require.NotNil(t, v["nav"])

	empty, err := LoadDataFiles(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	require.Empty(t, empty)

	writeFile(t, filepath.Join(dir, "broken.json"), "{")
	_, err = LoadDataFiles(dir)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCollection))
}
