package model

import "fmt"

// ImageInfo describes an embedded image or chart found on a page.
type ImageInfo struct {
	ID     string
	Page   int
	Index  int
	XRef   int
	BBox   BoundingBox
	Width  int
	Height int
	Format string

	// Caption holds nearby text scored as a likely caption, empty when
	// nothing qualified.
	Caption           string
	CaptionConfidence float64

	SizeBytes int
	Metadata  map[string]any
}

// ImageID builds the stable identifier for an image on a page. The index
// is the image's ordinal on the page and xref its object number.
func ImageID(page, index, xref int) string {
	return fmt.Sprintf("page_%d_img_%d_%d", page, index, xref)
}

// HasCaption reports whether a caption was attached.
func (img ImageInfo) HasCaption() bool { return img.Caption != "" }

// AspectRatio returns width over height, or 0 for degenerate images.
func (img ImageInfo) AspectRatio() float64 {
	if img.Height <= 0 {
		return 0
	}
	return float64(img.Width) / float64(img.Height)
}
