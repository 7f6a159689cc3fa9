package page

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/dotpath"
)

// Markup is the source format of a page body.
type Markup string

const (
	MarkupHTML     Markup = "html"
	MarkupMarkdown Markup = "md"
)

// Extensions lists the file extensions recognized as pages.
var Extensions = []string{".html", ".md"}

// IsPageFile reports whether name carries a page extension.
func IsPageFile(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// MarkupOf derives the markup kind from a file name's extension.
func MarkupOf(name string) Markup {
	return Markup(strings.TrimPrefix(path.Ext(name), "."))
}

// Record is a page read from disk.
type Record struct {
	// SourcePath is the slash-separated path relative to the scanned root.
	SourcePath string
	Meta       Metadata
	Content    string
	Markup     Markup
}

// DefaultScriptAttributes is applied to scripts declared as bare URLs.
const DefaultScriptAttributes = `type="text/javascript"`

// AssetRef is a script or stylesheet attached to a page.
type AssetRef struct {
	URL        string
	Attributes string
}

func (a AssetRef) toValue() map[string]any {
	return map[string]any{"url": a.URL, "attributes": a.Attributes}
}

// NormalizeAssets converts declared asset entries into AssetRefs. Strings
// become {url, attrs}; mappings keep their own url/attributes. Empty entries
// are dropped.
func NormalizeAssets(items []any, attrs string) []AssetRef {
	refs := make([]AssetRef, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v == "" {
				continue
			}
			refs = append(refs, AssetRef{URL: v, Attributes: attrs})
		case AssetRef:
			refs = append(refs, v)
		case map[string]any:
			url := dotpath.String(v, "url", "")
			if url == "" {
				continue
			}
			refs = append(refs, AssetRef{URL: url, Attributes: dotpath.String(v, "attributes", "")})
		}
	}
	return refs
}

// Metadata is a page's resolved metadata. It is a plain map so that
// arbitrary front matter keys reach templates unchanged.
type Metadata map[string]any

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	return Metadata(dotpath.CloneMap(m))
}

func (m Metadata) Title() string       { return dotpath.String(map[string]any(m), "title", "") }
func (m Metadata) Slug() string        { return dotpath.String(map[string]any(m), "slug", "") }
func (m Metadata) URL() string         { return dotpath.String(map[string]any(m), "url", "") }
func (m Metadata) Layout() string      { return dotpath.String(map[string]any(m), "layout", "") }
func (m Metadata) Filepath() string    { return dotpath.String(map[string]any(m), "filepath", "") }
func (m Metadata) Markup() Markup      { return Markup(dotpath.String(map[string]any(m), "markup", "")) }
func (m Metadata) Description() string { return dotpath.String(map[string]any(m), "description", "") }

// PrettyURL is false only when explicitly set to false.
func (m Metadata) PrettyURL() bool {
	return dotpath.Bool(map[string]any(m), "pretty_url", true)
}

// Sitemap returns the sitemap sub-record, never nil.
func (m Metadata) Sitemap() map[string]any {
	if s, ok := dotpath.Map(map[string]any(m), "sitemap"); ok {
		return s
	}
	return map[string]any{}
}

// Collections returns the declared collections mapping, if any.
func (m Metadata) Collections() (map[string]any, bool) {
	c, ok := dotpath.Map(map[string]any(m), "collections")
	return c, ok && len(c) > 0
}

// Scripts returns the page's script assets.
func (m Metadata) Scripts() []AssetRef {
	return m.assetList("assets.scripts")
}

// Stylesheets returns the page's stylesheet assets.
func (m Metadata) Stylesheets() []AssetRef {
	return m.assetList("assets.stylesheets")
}

func (m Metadata) assetList(key string) []AssetRef {
	items, _ := dotpath.Get(map[string]any(m), key, nil).([]any)
	return NormalizeAssets(items, "")
}

// SetAssets replaces the page's asset lists.
func (m Metadata) SetAssets(scripts, stylesheets []AssetRef) {
	m["assets"] = map[string]any{
		"scripts":     assetValues(scripts),
		"stylesheets": assetValues(stylesheets),
	}
}

func assetValues(refs []AssetRef) []any {
	out := make([]any, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.toValue())
	}
	return out
}
