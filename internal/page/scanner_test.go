package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerVisibilityRules(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html", "<p>home</p>")
	writePage(t, root, "about.md", "# About")
	writePage(t, root, "blog/post.md", "# Post")
	writePage(t, root, "blog/_draft.md", "# Draft")
	writePage(t, root, "blog/.hidden.html", "x")
	writePage(t, root, "_partials/nav.html", "<nav></nav>")
	writePage(t, root, "blog/_private/secret.md", "# Secret")
	writePage(t, root, "notes.txt", "not a page")

	records, err := NewScanner(NewResolver(NewSiteDefaults(DefaultsOptions{}))).Scan(root)
	require.NoError(t, err)

	var got []string
	for _, r := range records {
		got = append(got, r.SourcePath)
	}
	require.Equal(t, []string{"about.md", "blog/post.md", "index.html"}, got)
}

func TestScannerMissingRootYieldsNothing(t *testing.T) {
	records, err := NewScanner(NewResolver(NewSiteDefaults(DefaultsOptions{}))).Scan(t.TempDir() + "/nope")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestScannerWalkIsRestartable(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "a.md", "a")
	s := NewScanner(NewResolver(NewSiteDefaults(DefaultsOptions{})))
	seq := s.Walk(root)

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	require.Equal(t, 1, count())
	writePage(t, root, "b.md", "b")
	require.Equal(t, 2, count())
}

func TestScannerStopsOnFrontMatterError(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "a.md", "---\nbroken: [\n---\n")
	_, err := NewScanner(NewResolver(NewSiteDefaults(DefaultsOptions{}))).Scan(root)
	require.Error(t, err)
}

func TestScannerSkipsVanishedPages(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "a.md", "a")
	// A dangling link lists like a page but fails to read with fs.ErrNotExist.
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.html"), filepath.Join(root, "x.html")))

	records, err := NewScanner(NewResolver(NewSiteDefaults(DefaultsOptions{}))).Scan(root)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "a.md", records[0].SourcePath)
}
