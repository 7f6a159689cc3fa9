// Package sitemap renders a build manifest as a sitemaps.org document.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/dates"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
)

// FileName is the sitemap written into the output root.
const FileName = "sitemap.xml"

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one <url> block.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// URLSet is the document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Options controls lastmod defaults.
type Options struct {
	// Location is the timezone lastmod dates are expressed in.
	Location *time.Location
	// Now supplies the lastmod of entries without one; defaults to time.Now.
	Now func() time.Time
}

// Build converts manifest entries into a URLSet, skipping excluded entries
// and keeping manifest order.
func Build(entries []manifest.Entry, opts Options) URLSet {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	set := URLSet{Xmlns: namespace, URLs: make([]URL, 0, len(entries))}
	for _, e := range entries {
		if e.Excluded() {
			continue
		}
		lastmod := e.Sitemap["lastmod"]
		if lastmod == nil || lastmod == "" {
			lastmod = now()
		}
		set.URLs = append(set.URLs, URL{
			Loc:        e.URL,
			LastMod:    dates.Format(lastmod, "YYYY-MM-DD", opts.Location),
			ChangeFreq: stringify(e.Sitemap["changefreq"]),
			Priority:   stringify(e.Sitemap["priority"]),
		})
	}
	return set
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Generate writes the sitemap document for entries to w.
func Generate(w io.Writer, entries []manifest.Entry, opts Options) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(Build(entries, opts)); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}

// WriteFile writes dir/sitemap.xml.
func WriteFile(dir string, entries []manifest.Entry, opts Options) error {
	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return fmt.Errorf("create sitemap: %w", err)
	}
	if err := Generate(f, entries, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
