package render

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/dates"
	"git.home.luguber.info/inful/pagesmith/internal/dotpath"
	"git.home.luguber.info/inful/pagesmith/internal/page"
)

// PageIndex resolves pages by source path, with or without extension.
type PageIndex interface {
	Lookup(name string) (page.Metadata, bool)
}

// Helpers are the functions exposed to templates.
type Helpers struct {
	BaseURL   string
	StaticURL string
	Location  *time.Location
	Pages     PageIndex
}

// Globals returns the helper functions keyed by their template names.
func (h *Helpers) Globals() map[string]any {
	return map[string]any{
		"page_url":        h.PageURL,
		"page_link":       h.PageLink,
		"page_info":       h.PageInfo,
		"static_url":      h.StaticURLFor,
		"script_tag":      h.ScriptTag,
		"stylesheet_tag":  h.StylesheetTag,
		"format_date":     h.FormatDate,
		"meta_tag":        MetaTag,
		"meta_tag_custom": MetaTagCustom,
	}
}

func splitAnchor(name string) (string, string) {
	if i := strings.Index(name, "#"); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

// MakeURL joins a site-relative path onto the base URL.
func (h *Helpers) MakeURL(p string) string {
	return strings.TrimRight(h.BaseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

// PageInfo returns the dot-path key of a page's metadata. The optional
// argument is the default for unknown pages or keys.
func (h *Helpers) PageInfo(name, key string, def ...any) any {
	var fallback any
	if len(def) > 0 {
		fallback = def[0]
	}
	if h.Pages == nil {
		return fallback
	}
	meta, ok := h.Pages.Lookup(name)
	if !ok {
		return fallback
	}
	return dotpath.Get(map[string]any(meta), key, fallback)
}

// PageURL returns the absolute URL of a page, keeping any #anchor.
func (h *Helpers) PageURL(name string) string {
	name, anchor := splitAnchor(name)
	u, _ := h.PageInfo(name, "url", "").(string)
	return h.MakeURL(u) + anchor
}

// PageLink returns an anchor tag to a page. Optional args are the link text
// and title; the text defaults to the page title.
func (h *Helpers) PageLink(name string, args ...string) string {
	var text, title string
	if len(args) > 0 {
		text = args[0]
	}
	if len(args) > 1 {
		title = args[1]
	}
	base, _ := splitAnchor(name)
	if text == "" {
		text = title
	}
	if text == "" {
		text = fmt.Sprint(h.PageInfo(base, "title", ""))
	}
	if title == "" {
		title = text
	}
	return fmt.Sprintf(`<a href="%s" title="%s">%s</a>`, h.PageURL(name), title, text)
}

// StaticURLFor prefixes a static path with the static base URL. Absolute
// http(s) URLs are returned unchanged.
func (h *Helpers) StaticURLFor(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return strings.TrimRight(h.StaticURL, "/") + "/" + strings.TrimLeft(u, "/")
}

// ScriptTag returns a script element for a static path. The optional
// argument replaces the default attributes.
func (h *Helpers) ScriptTag(src string, attrs ...string) string {
	props := "type='text/javascript'"
	if len(attrs) > 0 && attrs[0] != "" {
		props = attrs[0]
	}
	return fmt.Sprintf(`<script %s src="%s"></script>`, props, h.StaticURLFor(src))
}

// StylesheetTag returns a link element for a static stylesheet path.
func (h *Helpers) StylesheetTag(src string) string {
	return fmt.Sprintf(`<link rel="stylesheet" href="%s" type="text/css">`, h.StaticURLFor(src))
}

// FormatDate formats dt in the configured timezone.
func (h *Helpers) FormatDate(dt any, layout ...string) string {
	l := ""
	if len(layout) > 0 {
		l = layout[0]
	}
	return dates.Format(dt, l, h.Location)
}

// MetaTagCustom returns <meta {ns}="{name}" content="{value}">.
func MetaTagCustom(ns, name, value string) string {
	return fmt.Sprintf(`<meta %s="%s" content="%s">`, ns, name, value)
}

// MetaTag returns <meta name="{name}" content="{value}">.
func MetaTag(name, value string) string {
	return MetaTagCustom("name", name, value)
}
