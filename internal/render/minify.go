package render

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Minifier shrinks rendered HTML.
type Minifier interface {
	MinifyHTML(src string) (string, error)
}

// HTMLMinifier minifies HTML documents including inline CSS and JavaScript.
// Document, end tags and <pre> content are preserved.
type HTMLMinifier struct {
	m *minify.M
}

func NewHTMLMinifier() *HTMLMinifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &HTMLMinifier{m: m}
}

func (h *HTMLMinifier) MinifyHTML(src string) (string, error) {
	out, err := h.m.String("text/html", src)
	if err != nil {
		return "", ferrors.RenderError("minify html").WithCause(err).Build()
	}
	return out, nil
}
