package collection

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// Source is where a collection's items come from. It is either a DataFile or
// a ContentDir.
type Source interface {
	isSource()
	fmt.Stringer
}

// DataFile names a dataset loaded from data/<Name>.json.
type DataFile struct {
	Name string
}

// ContentDir is a directory under content/ whose pages become items.
type ContentDir struct {
	Path string
}

func (DataFile) isSource()   {}
func (ContentDir) isSource() {}

func (d DataFile) String() string   { return "data_file:" + d.Name }
func (c ContentDir) String() string { return "content_dir:" + c.Path }

// Spec is a page's collections declaration.
type Spec struct {
	Source Source
	// Permalink is the URL pattern with {field} placeholders; may be empty.
	Permalink string
}

// ParseSpec reads a `collections` front matter mapping.
func ParseSpec(raw map[string]any) (Spec, error) {
	permalink, _ := raw["url"].(string)
	if name, _ := raw["data_file"].(string); name != "" {
		return Spec{Source: DataFile{Name: name}, Permalink: permalink}, nil
	}
	if dir, _ := raw["content_dir"].(string); dir != "" {
		return Spec{Source: ContentDir{Path: dir}, Permalink: permalink}, nil
	}
	return Spec{}, ferrors.ConfigError("collection is missing data_file or content_dir").Build()
}
