// Package sfc splits single-file components into template, script and style
// fragments.
package sfc

import (
	"regexp"
	"strings"
)

var (
	templateRe = regexp.MustCompile(`(?i)<template\s*>\n?([\s\S]*?)</template\s*>`)
	scriptRe   = regexp.MustCompile(`(?i)<script\b([^>]*)>\n?([\s\S]*?)</script\s*>`)
	styleRe    = regexp.MustCompile(`(?i)<style\b([^>]*)>\n?([\s\S]*?)</style\s*>`)
)

// Parts is the result of decomposing a page body.
type Parts struct {
	// HasComponents is true when a <template> block was found.
	HasComponents bool
	Template      string
	Script        string
	ScriptAttrs   string
	Style         string
	StyleAttrs    string
}

// HasScript reports whether a non-empty script fragment was captured.
func (p Parts) HasScript() bool { return p.HasComponents && p.Script != "" }

// HasStyle reports whether a non-empty style fragment was captured.
func (p Parts) HasStyle() bool { return p.HasComponents && p.Style != "" }

// IsSCSS reports whether the style tag asks for SCSS compilation.
func (p Parts) IsSCSS() bool { return strings.Contains(strings.ToLower(p.StyleAttrs), "scss") }

// Decompose splits text. The first <template> block wins; when there is none
// the whole text is the template and no script or style is captured.
// Double quotes in the script body are rewritten to single quotes.
func Decompose(text string) Parts {
	m := templateRe.FindStringSubmatch(text)
	if m == nil {
		return Parts{Template: text}
	}

	parts := Parts{HasComponents: true, Template: m[1]}
	if s := scriptRe.FindStringSubmatch(text); s != nil {
		parts.ScriptAttrs = strings.TrimSpace(s[1])
		parts.Script = strings.ReplaceAll(s[2], `"`, `'`)
	}
	if s := styleRe.FindStringSubmatch(text); s != nil {
		parts.StyleAttrs = strings.TrimSpace(s[1])
		parts.Style = s[2]
	}
	return parts
}
