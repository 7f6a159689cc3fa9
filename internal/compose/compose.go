// Package compose makes sure a page template extends a layout and places its
// body inside the layout's content block.
package compose

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockName is the layout block that receives page content.
const BlockName = "__PAGE_CONTENT__"

var (
	extendsRe = regexp.MustCompile(`\{%-?\s*extends\s+(.*?)\s*-?%\}`)
	blockRe   = regexp.MustCompile(`\{%-?\s*block\s+` + BlockName + `\s*-?%\}`)
)

// Kind classifies a template source.
type Kind int

const (
	// AlreadyWrapped sources extend a layout and define the content block.
	AlreadyWrapped Kind = iota
	// NeedsLayout sources have no extends directive.
	NeedsLayout
	// NeedsBlock sources extend a layout but do not define the content block.
	NeedsBlock
)

func (k Kind) String() string {
	switch k {
	case AlreadyWrapped:
		return "already_wrapped"
	case NeedsLayout:
		return "needs_layout"
	case NeedsBlock:
		return "needs_block"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is the result of Parse.
type Shape struct {
	Kind Kind
	// HasBlock is set when the content block is present; a NeedsLayout source
	// may already define it.
	HasBlock bool
	// Extends is the located extends directive, set unless Kind is NeedsLayout.
	Extends string
	// Layout is the directive's argument as written, quotes included.
	Layout string
	// start and end delimit Extends in the source.
	start, end int
}

// Parse classifies src.
func Parse(src string) Shape {
	shape := Shape{HasBlock: blockRe.MatchString(src)}
	loc := extendsRe.FindStringSubmatchIndex(src)
	if loc == nil {
		shape.Kind = NeedsLayout
		return shape
	}
	shape.Extends = src[loc[0]:loc[1]]
	shape.Layout = src[loc[2]:loc[3]]
	shape.start, shape.end = loc[0], loc[1]
	if shape.HasBlock {
		shape.Kind = AlreadyWrapped
	} else {
		shape.Kind = NeedsBlock
	}
	return shape
}

// ExtendsDirective returns the extends tag for layout.
func ExtendsDirective(layout string) string {
	return "{% extends '" + layout + "' %}"
}

// Compose returns src extended from layout with its body wrapped in the
// content block. AlreadyWrapped sources are returned unchanged.
func Compose(src, layout string) string {
	shape := Parse(src)
	if shape.Kind == NeedsLayout {
		src = ExtendsDirective(layout) + "\n" + src
		if shape.HasBlock {
			return src
		}
		shape = Parse(src)
	}
	if shape.Kind == NeedsBlock {
		body := src[:shape.start] + src[shape.end:]
		return shape.Extends + "\n{% block " + BlockName + " %}\n" + strings.TrimSpace(body) + "\n{% endblock %}"
	}
	return src
}
