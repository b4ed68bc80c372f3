package model

import "time"

// PageContent is the fully processed content of a single page.
type PageContent struct {
	Number int
	Width  float64
	Height float64

	// Rotation is the page's display rotation in degrees, as declared
	// by the document.
	Rotation int

	Blocks []TextBlock
	Tables []Table
	Images []ImageInfo
}

// Text returns the page text with blocks separated by blank lines, in
// block order.
func (p PageContent) Text() string {
	out := ""
	for i, b := range p.Blocks {
		if i > 0 {
			out += "\n\n"
		}
		out += b.Text
	}
	return out
}

// BlocksOfType returns the page blocks matching the given type.
func (p PageContent) BlocksOfType(ct ContentType) []TextBlock {
	var out []TextBlock
	for _, b := range p.Blocks {
		if b.Type == ct {
			out = append(out, b)
		}
	}
	return out
}

// DocumentMetadata carries document-level properties read from the PDF.
type DocumentMetadata struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	CreationDate string
	ModDate      string
	PageCount    int
	Encrypted    bool
}

// ExtractionResult is the complete output of a document run.
type ExtractionResult struct {
	FilePath  string
	Metadata  DocumentMetadata
	Pages     []PageContent
	Structure *DocumentStructure

	ProcessingTime time.Duration

	// Errors and Warnings hold page-level problems the run survived,
	// in "page N stage: detail" form.
	Errors   []string
	Warnings []string
}

// TableCount returns the total number of tables across all pages.
func (r ExtractionResult) TableCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Tables)
	}
	return n
}

// ImageCount returns the total number of images across all pages.
func (r ExtractionResult) ImageCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Images)
	}
	return n
}
