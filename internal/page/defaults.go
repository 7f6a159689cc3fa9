package page

// SiteDefaults is the default page metadata for one build. It is built once
// and never mutated; Fresh hands out independent copies.
type SiteDefaults struct {
	meta Metadata
}

// DefaultsOptions carries the global overrides from configuration.
type DefaultsOptions struct {
	// Sitemap keys shallow-merge over the built-in sitemap defaults.
	Sitemap map[string]any
	// Scripts and Stylesheets are the global asset lists; entries are URLs
	// or {url, attributes} mappings.
	Scripts     []any
	Stylesheets []any
}

// NewSiteDefaults builds the defaults snapshot.
func NewSiteDefaults(opts DefaultsOptions) SiteDefaults {
	sitemap := map[string]any{
		"lastmod":    nil,
		"priority":   "0.7",
		"changefreq": "monthly",
		"exclude":    false,
	}
	for k, v := range opts.Sitemap {
		sitemap[k] = v
	}

	meta := Metadata{
		"title":       "",
		"markup":      nil,
		"slug":        nil,
		"url":         "",
		"description": "",
		"pretty_url":  true,
		"meta":        map[string]any{},
		"layout":      nil,
		"sitemap":     sitemap,
		"collections": nil,
	}
	meta.SetAssets(
		NormalizeAssets(opts.Scripts, DefaultScriptAttributes),
		NormalizeAssets(opts.Stylesheets, ""),
	)
	return SiteDefaults{meta: meta.Clone()}
}

// Fresh returns a deep copy of the defaults for a single page.
func (d SiteDefaults) Fresh() Metadata {
	if d.meta == nil {
		return NewSiteDefaults(DefaultsOptions{}).meta.Clone()
	}
	return d.meta.Clone()
}
