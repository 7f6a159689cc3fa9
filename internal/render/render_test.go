package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/compose"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/page"
)

type mapIndex map[string]page.Metadata

func (m mapIndex) Lookup(name string) (page.Metadata, bool) {
	meta, ok := m[name]
	return meta, ok
}

func newTestRenderer(t *testing.T, globals map[string]any) *Pongo {
	t.Helper()
	root := t.TempDir()
	templates := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(templates, "layouts"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "layouts", "default.html"),
		[]byte(`<html><head><title>{{ page.title }}</title></head><body>{% block __PAGE_CONTENT__ %}{% endblock %}</body></html>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "snippet.html"), []byte(`<aside>{{ site.name }}</aside>`), 0o600))

	r, err := New("test", Options{SearchPaths: []string{templates, root}, Globals: globals})
	require.NoError(t, err)
	return r
}

func TestRenderComposedPage(t *testing.T) {
	r := newTestRenderer(t, map[string]any{"site": map[string]any{"name": "Demo"}})

	src := compose.Compose(`<h1>{{ page.title }}</h1>{% include "content/snippet.html" %}`, "layouts/default.html")
	out, err := r.Render(src, map[string]any{"page": map[string]any{"title": "Hello & Bye"}})
	require.NoError(t, err)
	require.Equal(t, "<html><head><title>Hello & Bye</title></head><body>\n<h1>Hello & Bye</h1><aside>Demo</aside>\n</body></html>", out)
}

func TestRenderGlobalsAndFilters(t *testing.T) {
	h := &Helpers{BaseURL: "https://example.com/", StaticURL: "/static"}
	globals := h.Globals()
	globals["data"] = map[string]any{"nav": []any{"a", "b"}}
	r := newTestRenderer(t, globals)

	out, err := r.Render(`{{ static_url("css/site.css") }}|{{ meta_tag("description", "d") }}|{{ data.nav|length }}|{{ "*x*"|markdown }}`, nil)
	require.NoError(t, err)
	require.Equal(t, `/static/css/site.css|<meta name="description" content="d">|2|<p><em>x</em></p>`, strings.TrimSpace(out))
}

func TestFormatDateFilterUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	r, err := New("tz", Options{Location: ny})
	require.NoError(t, err)

	out, err := r.Render(`{{ "2024-03-09T03:00:00Z"|format_date:"YYYY-MM-DD HH" }}`, nil)
	require.NoError(t, err)
	require.Equal(t, "2024-03-08 22", out)

	h := &Helpers{Location: ny}
	require.Equal(t, out, h.FormatDate("2024-03-09T03:00:00Z", "YYYY-MM-DD HH"))
}

func TestRenderErrorsAreClassified(t *testing.T) {
	r := newTestRenderer(t, nil)

	_, err := r.Render(`{% if %}`, nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))

	_, err = r.Render(`{% extends 'layouts/missing.html' %}{% block __PAGE_CONTENT__ %}{% endblock %}`, nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
}

func TestHelpers(t *testing.T) {
	h := &Helpers{
		BaseURL:   "https://example.com/",
		StaticURL: "/static/",
		Location:  time.UTC,
		Pages: mapIndex{
			"blog/post":    page.Metadata{"title": "Post", "url": "blog/post", "sitemap": map[string]any{"priority": "0.5"}},
			"blog/post.md": page.Metadata{"title": "Post", "url": "blog/post"},
		},
	}

	require.Equal(t, "https://example.com/blog/post", h.PageURL("blog/post"))
	require.Equal(t, "https://example.com/blog/post#top", h.PageURL("blog/post.md#top"))
	require.Equal(t, "https://example.com/", h.PageURL("unknown"))
	require.Equal(t, "0.5", h.PageInfo("blog/post", "sitemap.priority"))
	require.Equal(t, "dflt", h.PageInfo("blog/post", "nope", "dflt"))
	require.Nil(t, h.PageInfo("unknown", "title"))

	require.Equal(t, `<a href="https://example.com/blog/post" title="Post">Post</a>`, h.PageLink("blog/post"))
	require.Equal(t, `<a href="https://example.com/blog/post" title="Read">Read</a>`, h.PageLink("blog/post", "Read"))

	require.Equal(t, "/static/js/app.js", h.StaticURLFor("/js/app.js"))
	require.Equal(t, "https://cdn.example.com/x.js", h.StaticURLFor("https://cdn.example.com/x.js"))
	require.Equal(t, `<script type='text/javascript' src="/static/js/app.js"></script>`, h.ScriptTag("js/app.js"))
	require.Equal(t, `<script defer src="/static/js/app.js"></script>`, h.ScriptTag("js/app.js", "defer"))
	require.Equal(t, `<link rel="stylesheet" href="/static/a.css" type="text/css">`, h.StylesheetTag("a.css"))

	require.Equal(t, `<meta property="og:title" content="T">`, MetaTagCustom("property", "og:title", "T"))
	require.Equal(t, "2024-03-05", h.FormatDate("2024-03-05", "YYYY-MM-DD"))
}

func TestHTMLMinifier(t *testing.T) {
	out, err := NewHTMLMinifier().MinifyHTML("<html>\n  <body>\n    <p>  hi  </p>\n    <pre>a\n  b</pre>\n  </body>\n</html>\n")
	require.NoError(t, err)
	require.Contains(t, out, "<pre>a\n  b</pre>")
	require.Contains(t, out, "<html>")
	require.Contains(t, out, "</body>")
	require.NotContains(t, out, "\n    <p>")
}
