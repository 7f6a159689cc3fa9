// Package collection multiplies a base page into one page per item of a
// dataset or content directory.
package collection

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/dotpath"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/page"
	"git.home.luguber.info/inful/pagesmith/internal/sfc"
)

// ContentMarker in the base page template is replaced by each item's content.
const ContentMarker = "%%COLLECTION_CONTENT%%"

// Item is one entry of a collection source.
type Item struct {
	Meta    map[string]any
	Content string
	Markup  page.Markup
}

// Job is a derived page ready to be composed and rendered.
type Job struct {
	// Filepath is the output path relative to the build root.
	Filepath string
	Meta     page.Metadata
	Content  string
}

// Expander resolves collection sources and derives per-item jobs.
type Expander struct {
	// Data holds the datasets from LoadDataFiles.
	Data map[string]any
	// ContentRoot is the directory ContentDir paths are relative to.
	ContentRoot string
	Scanner     *page.Scanner
	Markdown    markdown.Converter
	Logger      *slog.Logger
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Items returns the item producer for src. DataFile sources must name a
// loaded dataset holding an array; ContentDir sources must exist. The
// ContentDir producer re-walks the directory on each iteration.
func (e *Expander) Items(src Source) (iter.Seq2[Item, error], error) {
	switch s := src.(type) {
	case DataFile:
		return e.dataItems(s)
	case ContentDir:
		return e.contentItems(s)
	default:
		return nil, ferrors.InternalError(fmt.Sprintf("unknown collection source %T", src)).Build()
	}
}

func (e *Expander) dataItems(src DataFile) (iter.Seq2[Item, error], error) {
	raw, ok := dotpath.Lookup(e.Data, src.Name)
	if !ok {
		return nil, ferrors.CollectionError(fmt.Sprintf("data file %q not found", src.Name)).
			WithContext("collection", src.String()).Build()
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, ferrors.CollectionError(fmt.Sprintf("data file %q is not a list", src.Name)).
			WithContext("collection", src.String()).Build()
	}
	return func(yield func(Item, error) bool) {
		for i, entry := range list {
			obj, ok := entry.(map[string]any)
			if !ok {
				yield(Item{}, ferrors.CollectionError(fmt.Sprintf("item %d of %q is not an object", i, src.Name)).Build())
				return
			}
			meta, ok := obj["meta"].(map[string]any)
			if !ok {
				yield(Item{}, ferrors.CollectionError(fmt.Sprintf("item %d of %q has no meta object", i, src.Name)).
					WithContext("collection", src.String()).Build())
				return
			}
			content, _ := obj["content"].(string)
			markup, _ := obj["markup"].(string)
			if !yield(Item{Meta: dotpath.CloneMap(meta), Content: content, Markup: page.Markup(markup)}, nil) {
				return
			}
		}
	}, nil
}

func (e *Expander) contentItems(src ContentDir) (iter.Seq2[Item, error], error) {
	dir := filepath.Join(e.ContentRoot, filepath.FromSlash(src.Path))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, ferrors.CollectionError(fmt.Sprintf("content dir %q not found", src.Path)).
			WithContext("collection", src.String()).WithContext("file", dir).Build()
	}
	return func(yield func(Item, error) bool) {
		for rec, err := range e.Scanner.Walk(dir) {
			if err != nil {
				yield(Item{}, err)
				return
			}
			if !yield(Item{Meta: rec.Meta, Content: rec.Content, Markup: rec.Markup}, nil) {
				return
			}
		}
	}, nil
}

// Expand derives one job per item of base's collection. template is the
// base page's already-extracted template text. Jobs keep source order.
func (e *Expander) Expand(base page.Metadata, template string) ([]Job, error) {
	raw, ok := base.Collections()
	if !ok {
		return nil, ferrors.InternalError("page has no collections declaration").Build()
	}
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, err
	}

	permalink := spec.Permalink
	if permalink == "" {
		permalink = strings.Trim(base.URL(), "/") + "/{url}"
		e.logger().Warn("Page collection is missing 'url', using a generated permalink",
			logfields.Page(dotpath.String(map[string]any(base), "basefile", "")),
			logfields.Collection(spec.Source.String()),
			slog.String("permalink", "/"+strings.TrimLeft(permalink, "/")))
	}
	permalink = "/" + strings.TrimLeft(permalink, "/")

	items, err := e.Items(spec.Source)
	if err != nil {
		return nil, err
	}

	fallbackMarkup := page.MarkupOf(base.Filepath())
	baseAssets, hasAssets := base["assets"]
	seen := map[string]int{}
	var jobs []Job
	var shared []any
	for item, err := range items {
		if err != nil {
			return nil, err
		}

		meta := base.Clone()
		for k, v := range item.Meta {
			meta[k] = v
		}
		// Derived pages always carry the base page's assets.
		if hasAssets {
			meta["assets"] = dotpath.Clone(baseAssets)
		}

		content, err := e.itemContent(item, fallbackMarkup)
		if err != nil {
			return nil, err
		}

		// Placeholders produced by the first pass are resolved by the second.
		first := FormatPermalink(permalink, meta)
		meta["url"] = strings.Trim(FormatPermalink(first, meta), "/")

		dest := outputPath(first)
		if prev, dup := seen[dest]; dup {
			return nil, ferrors.CollectionError(fmt.Sprintf("items %d and %d both resolve to %s", prev, len(jobs), dest)).
				WithContext("collection", spec.Source.String()).
				WithContext("permalink", permalink).Build()
		}
		seen[dest] = len(jobs)

		snapshot := meta.Clone()
		delete(snapshot, "collections")
		shared = append(shared, map[string]any(snapshot))

		jobs = append(jobs, Job{
			Filepath: first,
			Meta:     meta,
			Content:  strings.ReplaceAll(template, ContentMarker, content),
		})
	}

	for _, job := range jobs {
		job.Meta["collections"] = shared
	}
	e.logger().Debug("Expanded collection",
		logfields.Collection(spec.Source.String()), logfields.Count(len(jobs)))
	return jobs, nil
}

func (e *Expander) itemContent(item Item, fallback page.Markup) (string, error) {
	content := sfc.Decompose(item.Content).Template
	markup := item.Markup
	if markup == "" {
		markup = fallback
	}
	if markup != page.MarkupMarkdown || e.Markdown == nil {
		return content, nil
	}
	html, err := e.Markdown.Convert(content)
	if err != nil {
		return "", ferrors.BuildError("convert collection item markdown").WithCause(err).Build()
	}
	return html, nil
}

// outputPath mirrors the path the builder writes a job to.
func outputPath(p string) string {
	p = strings.Trim(p, "/")
	if strings.HasSuffix(p, ".html") {
		return p
	}
	return strings.TrimPrefix(p+"/index.html", "/")
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// FormatPermalink substitutes {field} placeholders with top-level values of
// meta. Unknown and nil fields are left in place.
func FormatPermalink(pattern string, meta map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(pattern, func(m string) string {
		v, ok := meta[m[1:len(m)-1]]
		if !ok || v == nil {
			return m
		}
		return fmt.Sprint(v)
	})
}
