package build

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagesmith/internal/assets"
	"git.home.luguber.info/inful/pagesmith/internal/compose"
	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/page"
	"git.home.luguber.info/inful/pagesmith/internal/render"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

// Options customizes a Builder. Zero values select the defaults derived from
// the configuration.
type Options struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Naming overrides build.asset_naming.
	Naming   assets.NamingPolicy
	Styles   assets.StyleCompiler
	Markdown markdown.Converter
	Minifier render.Minifier
	// Observers are notified after every run.
	Observers []Observer
	// Revision is exposed as __info__.revision.
	Revision string
	// Now is the build clock; defaults to time.Now.
	Now func() time.Time
}

// State is the mutable state of one build run, shared by its stages.
type State struct {
	Report  *Report
	Records []page.Record
	Data    map[string]any

	// previousHash is the content hash of the manifest found before
	// prepare_output cleared the tree.
	previousHash string
	logger       *slog.Logger
	recorder     metrics.Recorder
}

// Builder renders a project into its output directory.
type Builder struct {
	cfg       *config.Config
	logger    *slog.Logger
	recorder  metrics.Recorder
	naming    assets.NamingPolicy
	styles    assets.StyleCompiler
	md        markdown.Converter
	minifier  render.Minifier
	observers []Observer
	revision  string
	now       func() time.Time

	defaults page.SiteDefaults
	resolver *page.Resolver
	scanner  *page.Scanner
	helpers  *render.Helpers
	index    pageIndex
	manifest manifest.Manifest
	data     map[string]any
	renderer *render.Pongo

	running sync.Mutex
}

// New prepares a Builder for cfg. Site defaults are computed once here and
// shared read-only by every page of every run.
func New(cfg *config.Config, opts Options) (*Builder, error) {
	if cfg == nil {
		return nil, ferrors.ConfigError("configuration is required").Build()
	}
	b := &Builder{
		cfg:       cfg,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		naming:    opts.Naming,
		styles:    opts.Styles,
		md:        opts.Markdown,
		minifier:  opts.Minifier,
		observers: opts.Observers,
		revision:  opts.Revision,
		now:       opts.Now,
		index:     pageIndex{},
		data:      map[string]any{},
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.naming == nil {
		b.naming = namingFor(cfg.Active().AssetNaming)
	}
	if b.styles == nil {
		b.styles = &assets.DartSass{}
	}
	if b.md == nil {
		b.md = markdown.New()
	}
	if b.minifier == nil && cfg.Active().MinifyHTML {
		b.minifier = render.NewHTMLMinifier()
	}

	b.defaults = page.NewSiteDefaults(page.DefaultsOptions{
		Sitemap:     cfg.Globals.Sitemap,
		Scripts:     cfg.Globals.Assets.Scripts,
		Stylesheets: cfg.Globals.Assets.Stylesheets,
	})
	b.resolver = page.NewResolver(b.defaults)
	b.scanner = page.NewScanner(b.resolver)
	b.helpers = &render.Helpers{
		BaseURL:   cfg.BaseURL(),
		StaticURL: cfg.StaticURL(),
		Location:  cfg.Location(),
		Pages:     b.index,
	}
	return b, nil
}

func namingFor(n config.AssetNaming) assets.NamingPolicy {
	if n == config.AssetNamingContentHash {
		return assets.ContentHash{}
	}
	return assets.RandomToken{}
}

// Close releases the style compiler.
func (b *Builder) Close() error {
	if c, ok := b.styles.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// Manifest returns the entries written by the last run.
func (b *Builder) Manifest() []manifest.Entry { return b.manifest.Entries() }

// Build runs every stage: a clean output tree, static files, data, pages,
// and the optional sitemap and manifest.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	active := b.cfg.Active()
	stages := NewPipeline().
		Add(StagePrepareOutput, b.stagePrepareOutput).
		Add(StageCopyStatic, b.stageCopyStatic).
		Add(StageLoadData, b.stageLoadData).
		Add(StageAggregatePages, b.stageAggregatePages).
		Add(StageBuildPages, b.stageBuildPages).
		AddIf(active.GenerateSitemap, StageSitemap, b.stageSitemap).
		AddIf(active.WriteManifest, StageWriteManifest, b.stageWriteManifest).
		Build()
	return b.run(ctx, KindFull, stages)
}

// BuildStatic recopies the static directory into the output tree.
func (b *Builder) BuildStatic(ctx context.Context) (*Report, error) {
	return b.run(ctx, KindStatic, NewPipeline().Add(StageCopyStatic, b.stageCopyStatic).Build())
}

// BuildPages reloads data and rebuilds every page without cleaning the
// output tree.
func (b *Builder) BuildPages(ctx context.Context) (*Report, error) {
	active := b.cfg.Active()
	stages := NewPipeline().
		Add(StageLoadData, b.stageLoadData).
		Add(StageAggregatePages, b.stageAggregatePages).
		Add(StageBuildPages, b.stageBuildPages).
		AddIf(active.GenerateSitemap, StageSitemap, b.stageSitemap).
		AddIf(active.WriteManifest, StageWriteManifest, b.stageWriteManifest).
		Build()
	return b.run(ctx, KindPages, stages)
}

func (b *Builder) run(ctx context.Context, kind Kind, stages []StageDef) (*Report, error) {
	if !b.running.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer b.running.Unlock()

	report := newReport(uuid.NewString(), kind, b.cfg.Env, b.now())
	report.Revision = b.revision
	st := &State{
		Report:   report,
		logger:   b.logger.With(logfields.BuildID(report.ID)),
		recorder: b.recorder,
	}

	st.logger.Info("Build started", slog.String("kind", string(kind)), logfields.Env(b.cfg.Env))
	err := RunStages(ctx, st, stages)
	report.Finish(b.now())

	if err != nil {
		st.logger.Error("Build failed", logfields.Error(err), slog.String("outcome", string(report.Outcome)))
	} else {
		st.logger.Info("Build completed",
			logfields.Count(report.Pages),
			logfields.DurationMS(float64(report.Duration().Microseconds())/1000))
	}

	observers := append([]Observer{RecorderObserver{Recorder: b.recorder}}, b.observers...)
	notifyObservers(ctx, st.logger, observers, report)
	return report, err
}

func (b *Builder) globals() map[string]any {
	g := b.helpers.Globals()
	g["site"] = b.cfg.Site
	g["data"] = b.data
	g["__info__"] = map[string]any{
		"name":      "pagesmith",
		"version":   version.Version,
		"generator": "pagesmith " + version.Version,
		"timestamp": b.now().Unix(),
		"revision":  b.revision,
	}
	return g
}

// resetRenderer drops cached layouts so edited templates are picked up.
func (b *Builder) resetRenderer() error {
	r, err := render.New("pagesmith", render.Options{
		SearchPaths: []string{b.cfg.TemplatesDir(), b.cfg.Root},
		Globals:     b.globals(),
		Location:    b.cfg.Location(),
	})
	if err != nil {
		return ferrors.RenderError("create template renderer").WithCause(err).Build()
	}
	b.renderer = r
	return nil
}

// CreatePage records a manifest entry for filePath and writes the rendered
// page below the output root. vars is the template context; its "page"
// entry supplies the title and sitemap settings. An empty layout selects
// globals.layout.
func (b *Builder) CreatePage(filePath string, vars map[string]any, content, layout string) error {
	if b.renderer == nil {
		if err := b.resetRenderer(); err != nil {
			return err
		}
	}

	filePath = strings.Trim(filePath, "/")
	meta := b.pageMeta(vars)
	b.manifest.Append(manifest.Entry{
		Filepath: filePath,
		Title:    meta.Title(),
		URL:      b.helpers.MakeURL(strings.TrimSuffix(filePath, "index.html")),
		FullURL:  b.helpers.MakeURL(filePath),
		Sitemap:  meta.Sitemap(),
	})

	if !strings.HasSuffix(filePath, ".html") {
		filePath = strings.TrimLeft(filePath+"/index.html", "/")
	}
	if layout == "" {
		layout = b.cfg.Globals.Layout
	}

	tplCtx := maps.Clone(vars)
	if tplCtx == nil {
		tplCtx = map[string]any{}
	}
	tplCtx["page"] = map[string]any(meta)

	out, err := b.renderer.Render(compose.Compose(content, layout), tplCtx)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return ce.WithContext("file", filePath)
		}
		return err
	}
	if b.minifier != nil && b.cfg.Active().MinifyHTML {
		if out, err = b.minifier.MinifyHTML(out); err != nil {
			return ferrors.RenderError("minify page").WithCause(err).WithContext("file", filePath).Build()
		}
	}

	dest := filepath.Join(b.cfg.BuildDir(), filepath.FromSlash(filePath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil { //nolint:gosec // public site output
		return ferrors.FileSystemError("create page directory").WithCause(err).WithContext("file", dest).Build()
	}
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil { //nolint:gosec // public site output
		return ferrors.FileSystemError("write page").WithCause(err).WithContext("file", dest).Build()
	}
	b.logger.Debug("Wrote page", logfields.Dest(filePath), logfields.URL(meta.URL()))
	return nil
}

func (b *Builder) pageMeta(vars map[string]any) page.Metadata {
	switch v := vars["page"].(type) {
	case page.Metadata:
		return v
	case map[string]any:
		return page.Metadata(v)
	}
	return b.defaults.Fresh()
}

// pageIndex resolves pages by source path, with or without extension.
type pageIndex map[string]page.Metadata

func (p pageIndex) Lookup(name string) (page.Metadata, bool) {
	meta, ok := p[strings.Trim(name, "/")]
	return meta, ok
}

func (p pageIndex) reset(records []page.Record) {
	clear(p)
	for _, rec := range records {
		p[rec.SourcePath] = rec.Meta
		p[strings.TrimSuffix(rec.SourcePath, filepath.Ext(rec.SourcePath))] = rec.Meta
	}
}
