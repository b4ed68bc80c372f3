package reader

import (
	"context"

	"github.com/pdfstruct/pdfstruct/model"
)

// RawSpan is a run of text shown with a single font state.
type RawSpan struct {
	Text   string
	BBox   model.BoundingBox
	Font   string
	Size   float64
	Flags  int
	Color  int
	Origin model.Point
}

// RawLine is one baseline worth of spans, left to right.
type RawLine struct {
	Spans []RawSpan
	BBox  model.BoundingBox
	WMode int
	Dir   model.Point
}

// Text returns the concatenated span text.
func (l RawLine) Text() string {
	out := ""
	for _, s := range l.Spans {
		out += s.Text
	}
	return out
}

// RawBlock groups vertically adjacent lines.
type RawBlock struct {
	Number int
	Type   int
	BBox   model.BoundingBox
	Lines  []RawLine
}

// RuleLine is a stroked or filled path segment, used for detecting
// ruled tables.
type RuleLine struct {
	X0, Y0, X1, Y1 float64
	Width          float64
}

// IsHorizontal reports whether the rule runs mostly left to right.
func (r RuleLine) IsHorizontal() bool {
	dx := r.X1 - r.X0
	dy := r.Y1 - r.Y0
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx >= dy
}

// RawImage is an image XObject placed on the page.
type RawImage struct {
	Index     int
	XRef      int
	BBox      model.BoundingBox
	Width     int
	Height    int
	Format    string
	SizeBytes int
}

// RawPage is the complete raw layout of one page.
type RawPage struct {
	Number   int
	Width    float64
	Height   float64
	Rotation int
	Blocks   []RawBlock
	Rules    []RuleLine
	Images   []RawImage
}

// TextBlocks returns only the text blocks of the page.
func (p *RawPage) TextBlocks() []RawBlock {
	var out []RawBlock
	for _, b := range p.Blocks {
		if b.Type == model.BlockTypeText {
			out = append(out, b)
		}
	}
	return out
}

// SpanCount returns the number of spans on the page.
func (p *RawPage) SpanCount() int {
	n := 0
	for _, b := range p.Blocks {
		for _, l := range b.Lines {
			n += len(l.Spans)
		}
	}
	return n
}

// PageSource yields raw pages from some backing document. Implemented
// by Document; test doubles implement it to drive the pipeline without
// a real file.
type PageSource interface {
	PageCount() int
	Page(ctx context.Context, number int) (*RawPage, error)
	Metadata() model.DocumentMetadata
	Close() error
}
