// Package assets writes the script and style fragments of single-file
// components to static files.
package assets

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/page"
	"git.home.luguber.info/inful/pagesmith/internal/sfc"
	"git.home.luguber.info/inful/pagesmith/internal/slug"
)

// DirName is the page-assets directory inside the static output root.
const DirName = "pages_assets__"

// StaticURLMarker in a fragment is replaced with the static base URL.
const StaticURLMarker = "%%STATIC_URL%%"

// Extractor materializes SFC fragments under StaticDir/DirName.
type Extractor struct {
	// StaticDir is the static output root, e.g. .build/static.
	StaticDir string
	// StaticURL is the static base URL substituted for StaticURLMarker.
	StaticURL string
	Naming    NamingPolicy
	Styles    StyleCompiler
}

// Extract writes the script and style of a component page and returns their
// refs. Non-component parts, or parts without script and style, produce no
// files. Script refs keep the tag attributes; stylesheet refs carry none.
func (e *Extractor) Extract(name string, parts sfc.Parts) (scripts, stylesheets []page.AssetRef, err error) {
	if !parts.HasScript() && !parts.HasStyle() {
		return nil, nil, nil
	}

	naming := e.Naming
	if naming == nil {
		naming = RandomToken{}
	}
	base := slug.Make(name) + "_" + naming.Token(name, parts.Script, parts.Style)
	staticURL := strings.TrimRight(e.StaticURL, "/")

	if parts.HasScript() {
		ref, err := e.write(base+".js", strings.ReplaceAll(parts.Script, StaticURLMarker, staticURL))
		if err != nil {
			return nil, nil, err
		}
		ref.Attributes = parts.ScriptAttrs
		scripts = append(scripts, ref)
	}

	if parts.HasStyle() {
		css := strings.ReplaceAll(parts.Style, StaticURLMarker, staticURL)
		if parts.IsSCSS() {
			if e.Styles == nil {
				return nil, nil, ferrors.AssetsError("scss style found but no style compiler is configured").
					WithContext("file", name).Build()
			}
			css, err = e.Styles.CompileSCSS(css)
			if err != nil {
				return nil, nil, ferrors.AssetsError("scss compilation failed").
					WithCause(err).WithContext("file", name).Build()
			}
		}
		ref, err := e.write(base+".css", css)
		if err != nil {
			return nil, nil, err
		}
		stylesheets = append(stylesheets, ref)
	}
	return scripts, stylesheets, nil
}

func (e *Extractor) write(fileName, content string) (page.AssetRef, error) {
	dir := filepath.Join(e.StaticDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return page.AssetRef{}, ferrors.FileSystemError("create page assets directory").
			WithCause(err).WithContext("file", dir).Build()
	}
	dest := filepath.Join(dir, fileName)
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil { //nolint:gosec // public site output
		return page.AssetRef{}, ferrors.FileSystemError("write page asset").
			WithCause(err).WithContext("file", dest).Build()
	}
	return page.AssetRef{URL: path.Join(DirName, fileName)}, nil
}
