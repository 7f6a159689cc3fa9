package page

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
)

// Resolver reads page files and resolves their metadata.
type Resolver struct {
	defaults SiteDefaults
}

// NewResolver returns a resolver bound to one build's defaults.
func NewResolver(defaults SiteDefaults) *Resolver {
	return &Resolver{defaults: defaults}
}

// Read loads the page at file, whose metadata paths are computed relative to
// root. Errors reading the file are returned unwrapped so callers can test
// for fs.ErrNotExist; malformed front matter yields a fatal classified error.
func (r *Resolver) Read(file, root string) (Record, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Record{}, err
	}

	rel, err := filepath.Rel(root, file)
	if err != nil {
		return Record{}, fmt.Errorf("relative path for %s: %w", file, err)
	}
	rel = filepath.ToSlash(rel)

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return Record{}, ferrors.FrontMatterError("malformed front matter").
			WithCause(err).WithContext("file", file).Build()
	}

	meta := r.merge(doc.Fields)
	markup := MarkupOf(rel)

	dest, url := DestinationAndURL(rel, meta)
	if explicit := meta.URL(); explicit != "" {
		url = explicit
	}
	meta["url"] = strings.Trim(url, "/")
	meta["filepath"] = dest
	meta["filedest"] = dest
	meta["basefile"] = rel
	meta["markup"] = string(markup)

	return Record{SourcePath: rel, Meta: meta, Content: doc.Body, Markup: markup}, nil
}

func (r *Resolver) merge(fields map[string]any) Metadata {
	meta := r.defaults.Fresh()
	sitemap := meta.Sitemap()
	scripts := meta.Scripts()
	stylesheets := meta.Stylesheets()

	if sm, ok := fields["sitemap"].(map[string]any); ok {
		for k, v := range sm {
			sitemap[k] = v
		}
	}
	if declared, ok := fields["assets"].(map[string]any); ok {
		s, _ := declared["scripts"].([]any)
		c, _ := declared["stylesheets"].([]any)
		scripts = append(scripts, NormalizeAssets(s, DefaultScriptAttributes)...)
		stylesheets = append(stylesheets, NormalizeAssets(c, "")...)
	}

	for k, v := range fields {
		meta[k] = v
	}
	meta["sitemap"] = sitemap
	meta.SetAssets(scripts, stylesheets)
	return meta
}

// DestinationAndURL computes where a page at relPath is written and the URL
// it is served from. The URL has a leading slash and no trailing index.html.
func DestinationAndURL(relPath string, meta Metadata) (dest, url string) {
	relPath = filepath.ToSlash(relPath)
	dir, name := path.Split(relPath)
	dir = strings.TrimSuffix(dir, "/")

	stem := name
	if s := meta.Slug(); s != "" {
		stem = slug.Make(s)
	}
	for _, ext := range Extensions {
		stem = strings.TrimSuffix(stem, ext)
	}

	switch {
	case !meta.PrettyURL():
		dest = path.Join(dir, stem+".html")
	case name == "index.html" || name == "index.md":
		dest = path.Join(dir, "index.html")
	default:
		dest = path.Join(dir, stem, "index.html")
	}
	url = "/" + strings.TrimSuffix(strings.TrimPrefix(dest, "/"), "index.html")
	return dest, url
}
