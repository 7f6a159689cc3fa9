package assets

import (
	"fmt"
	"sync"

	"github.com/bep/godartsass/v2"
)

// StyleCompiler turns SCSS into CSS.
type StyleCompiler interface {
	CompileSCSS(src string) (string, error)
}

// DartSass compiles SCSS through the Dart Sass embedded protocol. The sass
// process is started on first use and reused until Close.
type DartSass struct {
	// Binary overrides the dart-sass executable looked up on PATH.
	Binary       string
	IncludePaths []string

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

func (d *DartSass) CompileSCSS(src string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		t, err := godartsass.Start(godartsass.Options{DartSassEmbeddedFilename: d.Binary})
		if err != nil {
			return "", fmt.Errorf("start dart sass: %w", err)
		}
		d.transpiler = t
	}

	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       src,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		IncludePaths: d.IncludePaths,
	})
	if err != nil {
		return "", fmt.Errorf("compile scss: %w", err)
	}
	return res.CSS, nil
}

// Close stops the sass process if it was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}
