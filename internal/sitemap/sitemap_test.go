package sitemap

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/manifest"
)

func entry(url string, sitemap map[string]any) manifest.Entry {
	return manifest.Entry{Filepath: strings.TrimPrefix(url, "/"), URL: url, FullURL: url + "index.html", Sitemap: sitemap}
}

func fixedNow() time.Time { return time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC) }

func TestGenerateSkipsExcluded(t *testing.T) {
	entries := []manifest.Entry{
		entry("/", map[string]any{"priority": "1.0", "changefreq": "daily", "exclude": false}),
		entry("/secret/", map[string]any{"exclude": true}),
		entry("/blog/", map[string]any{"priority": 0.7, "changefreq": "monthly", "lastmod": "2023-02-01"}),
	}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, entries, Options{Location: time.UTC, Now: fixedNow}))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Equal(t, 2, strings.Count(out, "<url>"))
	require.NotContains(t, out, "/secret/")

	var parsed URLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	require.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	require.Equal(t, []URL{
		{Loc: "/", LastMod: "2024-05-06", ChangeFreq: "daily", Priority: "1.0"},
		{Loc: "/blog/", LastMod: "2023-02-01", ChangeFreq: "monthly", Priority: "0.7"},
	}, parsed.URLs)
}

func TestLastmodDefaultUsesTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	set := Build([]manifest.Entry{entry("/", map[string]any{})}, Options{Location: ny, Now: fixedNow})
	require.Equal(t, "2024-05-06", set.URLs[0].LastMod)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	set = Build([]manifest.Entry{entry("/", map[string]any{})}, Options{Location: tokyo, Now: fixedNow})
	require.Equal(t, "2024-05-07", set.URLs[0].LastMod)
}

func TestAllExcludedYieldsEmptyURLSet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, []manifest.Entry{entry("/a/", map[string]any{"exclude": true})}, Options{}))
	require.Zero(t, strings.Count(buf.String(), "<url>"))
	require.Contains(t, buf.String(), "<urlset")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, []manifest.Entry{entry("/", map[string]any{})}, Options{Now: fixedNow}))
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	require.Contains(t, string(data), "<loc>/</loc>")
}
