package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/assets"
	"git.home.luguber.info/inful/pagesmith/internal/collection"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/page"
	"git.home.luguber.info/inful/pagesmith/internal/sfc"
	"git.home.luguber.info/inful/pagesmith/internal/sitemap"
)

func (b *Builder) stagePrepareOutput(_ context.Context, st *State) error {
	out := b.cfg.BuildDir()
	if filepath.Clean(out) == filepath.Clean(b.cfg.Root) {
		return ferrors.ConfigError("output directory must not be the project root").WithContext("file", out).Build()
	}
	if prev, err := manifest.ReadFile(out); err == nil {
		st.previousHash = prev.ContentHash
	}
	if err := os.RemoveAll(out); err != nil {
		return ferrors.FileSystemError("clean output directory").WithCause(err).WithContext("file", out).Build()
	}
	if err := os.MkdirAll(out, 0o755); err != nil { //nolint:gosec // public site output
		return ferrors.FileSystemError("create output directory").WithCause(err).WithContext("file", out).Build()
	}
	st.logger.Debug("Prepared output directory", logfields.Path(out))
	return nil
}

func (b *Builder) stageCopyStatic(ctx context.Context, st *State) error {
	n, err := copyTree(ctx, b.cfg.StaticDir(), b.staticOutDir())
	if err != nil {
		return err
	}
	st.logger.Debug("Copied static files", logfields.Count(n))
	return nil
}

func (b *Builder) staticOutDir() string {
	return filepath.Join(b.cfg.BuildDir(), "static")
}

func (b *Builder) stageLoadData(_ context.Context, st *State) error {
	data, err := collection.LoadDataFiles(b.cfg.DataDir())
	if err != nil {
		return err
	}
	st.Data = data
	b.data = data
	return b.resetRenderer()
}

func (b *Builder) stageAggregatePages(_ context.Context, st *State) error {
	b.manifest.Reset()
	records, err := b.scanner.Scan(b.cfg.PagesDir())
	if err != nil {
		return err
	}
	st.Records = records
	b.index.reset(records)
	st.logger.Debug("Aggregated pages", logfields.Count(len(records)))
	return nil
}

func (b *Builder) stageBuildPages(ctx context.Context, st *State) error {
	extractor := &assets.Extractor{
		StaticDir: b.staticOutDir(),
		StaticURL: b.cfg.StaticURL(),
		Naming:    b.naming,
		Styles:    b.styles,
	}
	expander := &collection.Expander{
		Data:        st.Data,
		ContentRoot: b.cfg.ContentDir(),
		Scanner:     b.scanner,
		Markdown:    b.md,
		Logger:      st.logger,
	}

	for _, rec := range st.Records {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageBuildPages, err)
		}
		if err := b.buildPage(st, rec, extractor, expander); err != nil {
			if ce, ok := ferrors.AsClassified(err); ok {
				if _, has := ce.Context().GetString("file"); !has {
					return ce.WithContext("file", rec.SourcePath)
				}
				return ce
			}
			return fmt.Errorf("page %s: %w", rec.SourcePath, err)
		}
	}
	return nil
}

func (b *Builder) buildPage(st *State, rec page.Record, extractor *assets.Extractor, expander *collection.Expander) error {
	parts := sfc.Decompose(rec.Content)
	scripts, stylesheets, err := extractor.Extract(rec.SourcePath, parts)
	if err != nil {
		return err
	}
	for range scripts {
		b.recorder.IncAssetsExtracted("js")
	}
	for range stylesheets {
		b.recorder.IncAssetsExtracted("css")
	}
	st.Report.Assets += len(scripts) + len(stylesheets)

	content := parts.Template
	if rec.Markup == page.MarkupMarkdown {
		if content, err = b.md.Convert(content); err != nil {
			return ferrors.BuildError("convert page markdown").WithCause(err).Build()
		}
	}

	meta := rec.Meta
	meta.SetAssets(append(meta.Scripts(), scripts...), append(meta.Stylesheets(), stylesheets...))
	layout := meta.Layout()

	if _, ok := meta.Collections(); !ok {
		if err := b.CreatePage(meta.Filepath(), map[string]any{"page": meta}, content, layout); err != nil {
			return err
		}
		st.Report.Pages++
		b.recorder.IncPagesWritten("page")
		return nil
	}

	jobs, err := expander.Expand(meta, content)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if err := b.CreatePage(job.Filepath, map[string]any{"page": job.Meta}, job.Content, layout); err != nil {
			return err
		}
		st.Report.Pages++
		b.recorder.IncPagesWritten("collection")
	}
	return nil
}

func (b *Builder) stageSitemap(_ context.Context, st *State) error {
	entries := b.manifest.Entries()
	err := sitemap.WriteFile(b.cfg.BuildDir(), entries, sitemap.Options{Location: b.cfg.Location(), Now: b.now})
	if err != nil {
		return ferrors.FileSystemError("write sitemap").WithCause(err).WithContext("file", b.cfg.BuildDir()).Build()
	}
	st.logger.Debug("Wrote sitemap", logfields.Count(len(entries)))
	return nil
}

func (b *Builder) stageWriteManifest(_ context.Context, st *State) error {
	m := &manifest.BuildManifest{
		ID:        st.Report.ID,
		Timestamp: st.Report.Start,
		Env:       b.cfg.Env,
		Revision:  b.revision,
		Status:    string(OutcomeSuccess),
		Duration:  b.now().Sub(st.Report.Start).Milliseconds(),
		Pages:     b.manifest.Entries(),
	}
	if st.Report.Kind != KindFull {
		// Partial rebuilds leave the previous manifest in place.
		if prev, err := manifest.ReadFile(b.cfg.BuildDir()); err == nil {
			st.previousHash = prev.ContentHash
		}
	}
	hash, err := m.Hash()
	if err != nil {
		return ferrors.InternalError("hash build manifest").WithCause(err).Build()
	}
	m.ContentHash = hash
	st.Report.ManifestHash = hash
	st.Report.Unchanged = hash == st.previousHash
	if st.Report.Unchanged {
		st.logger.Info("Site content unchanged since previous build", slog.String("content_hash", hash[:12]))
	}
	if err := m.WriteFile(b.cfg.BuildDir()); err != nil {
		return ferrors.FileSystemError("write build manifest").WithCause(err).
			WithContext("file", filepath.Join(b.cfg.BuildDir(), manifest.FileName)).Build()
	}
	return nil
}
