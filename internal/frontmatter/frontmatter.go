package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Document is a page file split into parsed front matter and body text.
type Document struct {
	Fields map[string]any
	Body   string
	// HadFrontMatter reports whether a delimited block was present.
	HadFrontMatter bool
}

// Split separates a `---` delimited YAML block from the body. LF and CRLF
// line endings are recognized. Documents without a leading delimiter return
// had=false and the full input as body.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---")
	for from := start; ; {
		idx := bytes.Index(content[from:], closeSeq)
		if idx < 0 {
			return nil, nil, false, ErrMissingClosingDelimiter
		}
		at := from + idx
		rest := content[at+len(closeSeq):]
		switch {
		case len(rest) == 0:
			return content[start : at+len(nl)], rest, true, nil
		case bytes.HasPrefix(rest, []byte(nl)):
			return content[start : at+len(nl)], rest[len(nl):], true, nil
		}
		// "---" followed by more text on the same line is not a delimiter.
		from = at + len(nl)
	}
}

// ParseYAML parses raw front matter (without delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits and decodes a page file in one step.
func Parse(content []byte) (Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return Document{}, fmt.Errorf("parse front matter: %w", err)
	}
	return Document{Fields: fields, Body: string(body), HadFrontMatter: had}, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
