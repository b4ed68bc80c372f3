package model

import "strings"

// ContentType classifies a text block by its role in the document.
type ContentType int

const (
	ContentTypeText ContentType = iota
	ContentTypeHeader
	ContentTypeHeader1
	ContentTypeHeader2
	ContentTypeHeader3
	ContentTypeHeader4
	ContentTypeHeader5
	ContentTypeHeader6
	ContentTypeParagraph
	ContentTypeList
	ContentTypeFooter
)

func (ct ContentType) String() string {
	switch ct {
	case ContentTypeText:
		return "text"
	case ContentTypeHeader:
		return "header"
	case ContentTypeHeader1:
		return "header_1"
	case ContentTypeHeader2:
		return "header_2"
	case ContentTypeHeader3:
		return "header_3"
	case ContentTypeHeader4:
		return "header_4"
	case ContentTypeHeader5:
		return "header_5"
	case ContentTypeHeader6:
		return "header_6"
	case ContentTypeParagraph:
		return "paragraph"
	case ContentTypeList:
		return "list"
	case ContentTypeFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// IsHeaderType reports whether the type is the generic header or one of
// the explicit header levels.
func (ct ContentType) IsHeaderType() bool {
	return ct >= ContentTypeHeader && ct <= ContentTypeHeader6
}

// GetHeaderLevel returns the header level encoded in the type, or 0 for
// non-header types. The generic header type maps to level 1.
func (ct ContentType) GetHeaderLevel() int {
	switch {
	case ct == ContentTypeHeader:
		return 1
	case ct >= ContentTypeHeader1 && ct <= ContentTypeHeader6:
		return int(ct-ContentTypeHeader1) + 1
	default:
		return 0
	}
}

// HeaderType returns the explicit header ContentType for a level in
// [1,6]. Levels outside the range clamp to the nearest bound.
func HeaderType(level int) ContentType {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return ContentTypeHeader1 + ContentType(level-1)
}

// TextSpan is a run of text with uniform font attributes. It is the leaf
// unit of text and is owned exclusively by its TextLine.
type TextSpan struct {
	Text   string
	BBox   BoundingBox
	Font   FontInfo
	Origin Point
}

// TextLine is an ordered left-to-right sequence of spans.
type TextLine struct {
	Spans []TextSpan
	BBox  BoundingBox

	// WMode is the writing mode: 0=horizontal, 1=vertical.
	WMode int

	// Dir is the writing direction vector.
	Dir Point
}

// Text returns the concatenated text of all spans.
func (l TextLine) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Block types within a ContentBlock.
const (
	BlockTypeText  = 0
	BlockTypeImage = 1
)

// ContentBlock is a paragraph or image container as delivered by the
// span source. Image blocks have no lines.
type ContentBlock struct {
	Number    int
	BlockType int
	BBox      BoundingBox
	Lines     []TextLine
}

// IsTextBlock reports whether the block holds text.
func (b ContentBlock) IsTextBlock() bool { return b.BlockType == BlockTypeText }

// IsImageBlock reports whether the block holds an image.
func (b ContentBlock) IsImageBlock() bool { return b.BlockType == BlockTypeImage }

// Text returns the block text with one line per text line.
func (b ContentBlock) Text() string {
	parts := make([]string, 0, len(b.Lines))
	for _, line := range b.Lines {
		parts = append(parts, line.Text())
	}
	return strings.Join(parts, "\n")
}

// TextBlock is the classified unit of text produced by the classifier
// and consumed by the structure builder. Metadata accumulates provenance
// as the block passes through pipeline stages; entries are appended,
// never contradicted.
type TextBlock struct {
	Text       string
	Type       ContentType
	BBox       BoundingBox
	FontInfo   map[string]any
	Confidence float64
	Metadata   map[string]any
}

// SetMeta records a metadata entry, allocating the map on first use.
func (t *TextBlock) SetMeta(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[key] = value
}

// Meta returns the metadata value for key, or nil.
func (t *TextBlock) Meta(key string) any {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata[key]
}
