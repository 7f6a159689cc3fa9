// Package render compiles composed page templates with pongo2 and minifies
// the resulting HTML.
package render

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/pagesmith/internal/dates"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// Renderer turns template source into output text.
type Renderer interface {
	Render(src string, ctx map[string]any) (string, error)
}

// Options configures a Pongo renderer.
type Options struct {
	// SearchPaths are tried in order when resolving extends/include names.
	SearchPaths []string
	// Globals are visible to every template.
	Globals map[string]any
	// Location is used by the format_date filter; nil means UTC.
	Location *time.Location
}

// Pongo renders templates with Django/Jinja syntax.
type Pongo struct {
	mu  sync.Mutex
	set *pongo2.TemplateSet
}

var registerOnce sync.Once

// pongo2 filters are process wide, so the format_date filter reads the
// location of the most recently created renderer.
var filterLocation atomic.Pointer[time.Location]

func registerFilters() {
	registerOnce.Do(func() {
		// Page bodies are trusted HTML; escaping would break composed layouts.
		pongo2.SetAutoescape(false)

		md := markdown.New()
		mustRegister("markdown", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(md.MustConvert(in.String())), nil
		})
		mustRegister("format_date", func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			layout := ""
			if !param.IsNil() {
				layout = param.String()
			}
			return pongo2.AsValue(dates.Format(in.Interface(), layout, filterLocation.Load())), nil
		})
	})
}

func mustRegister(name string, fn pongo2.FilterFunction) {
	if pongo2.FilterExists(name) {
		if err := pongo2.ReplaceFilter(name, fn); err != nil {
			panic(err)
		}
		return
	}
	if err := pongo2.RegisterFilter(name, fn); err != nil {
		panic(err)
	}
}

// New returns a renderer whose loaders search opts.SearchPaths in order.
// Missing search paths are skipped.
func New(name string, opts Options) (*Pongo, error) {
	registerFilters()
	filterLocation.Store(opts.Location)

	var loaders []pongo2.TemplateLoader
	for _, dir := range opts.SearchPaths {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return nil, fmt.Errorf("template loader %s: %w", dir, err)
		}
		loaders = append(loaders, loader)
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.MustNewLocalFileSystemLoader(""))
	}

	set := pongo2.NewSet(name, loaders...)
	for k, v := range opts.Globals {
		set.Globals[k] = v
	}
	return &Pongo{set: set}, nil
}

// Render compiles src and executes it with ctx layered over the globals.
func (p *Pongo) Render(src string, ctx map[string]any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tpl, err := p.set.FromString(src)
	if err != nil {
		return "", ferrors.RenderError("template compile failed").WithCause(err).Build()
	}
	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", ferrors.RenderError("template render failed").WithCause(err).Build()
	}
	return out, nil
}
