package output

import "github.com/pdfstruct/pdfstruct/model"

// Output is the complete serialized form of an extraction run.
type Output struct {
	Document       Document       `json:"document"`
	Metadata       Metadata       `json:"metadata"`
	ExtractionInfo ExtractionInfo `json:"extraction_info"`
}

// Document holds the content tree and its summary statistics.
type Document struct {
	Title   string  `json:"title"`
	Content []any   `json:"content"`
	Summary Summary `json:"summary"`
}

// Summary counts what the document contains.
type Summary struct {
	TotalSections      int            `json:"total_sections"`
	TotalPages         int            `json:"total_pages"`
	TotalContentBlocks int            `json:"total_content_blocks"`
	ContentTypes       map[string]int `json:"content_types"`
}

// Metadata mirrors the source file's properties.
type Metadata struct {
	FilePath     string `json:"file_path"`
	PageCount    int    `json:"page_count"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
	Encrypted    bool   `json:"encrypted,omitempty"`
}

// ExtractionInfo records how the run went.
type ExtractionInfo struct {
	ProcessingTime float64        `json:"processing_time"`
	Config         ConfigSnapshot `json:"extraction_config"`
	Errors         []string       `json:"errors"`
	Warnings       []string       `json:"warnings"`
}

// ConfigSnapshot is the subset of configuration worth echoing into the
// output.
type ConfigSnapshot struct {
	Mode           string `json:"mode"`
	ExtractTables  bool   `json:"extract_tables"`
	ExtractImages  bool   `json:"extract_images"`
	PreserveLayout bool   `json:"preserve_layout"`
}

// SectionItem is a node of the section tree.
type SectionItem struct {
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Level      int                `json:"level"`
	Content    []any              `json:"content"`
	PageNumber int                `json:"page_number"`
	BBox       *model.BoundingBox `json:"bbox"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// HeaderItem is a header block kept inside a section's content, as
// opposed to the header that opened the section.
type HeaderItem struct {
	Type       string             `json:"type"`
	Text       string             `json:"text"`
	Level      int                `json:"level"`
	PageNumber int                `json:"page_number"`
	BBox       *model.BoundingBox `json:"bbox"`
	FontInfo   map[string]any     `json:"font_info,omitempty"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// ParagraphItem is any non-header, non-list text block.
type ParagraphItem struct {
	Type       string             `json:"type"`
	Text       string             `json:"text"`
	PageNumber int                `json:"page_number"`
	BBox       *model.BoundingBox `json:"bbox"`
	FontInfo   map[string]any     `json:"font_info,omitempty"`
	Confidence float64            `json:"confidence"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// ListItem is a list block split into entries.
type ListItem struct {
	Type       string             `json:"type"`
	Items      []ListEntry        `json:"items"`
	ListType   string             `json:"list_type"`
	PageNumber int                `json:"page_number"`
	BBox       *model.BoundingBox `json:"bbox"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// ListEntry is one line of a list.
type ListEntry struct {
	Text       string `json:"text"`
	Level      int    `json:"level"`
	BulletType string `json:"bullet_type"`
}

// TableItem is an extracted table.
type TableItem struct {
	Type             string             `json:"type"`
	Data             [][]string         `json:"data"`
	Headers          []string           `json:"headers"`
	Rows             int                `json:"rows"`
	Cols             int                `json:"cols"`
	PageNumber       int                `json:"page_number"`
	BBox             *model.BoundingBox `json:"bbox"`
	ExtractionMethod string             `json:"extraction_method"`
	Confidence       float64            `json:"confidence"`
	Metadata         map[string]any     `json:"metadata,omitempty"`
}

// ImageItem is an embedded image with its caption, when one was found.
type ImageItem struct {
	Type        string             `json:"type"`
	ImageID     string             `json:"image_id"`
	Description string             `json:"description"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Format      string             `json:"format"`
	SizeBytes   int                `json:"size_bytes"`
	PageNumber  int                `json:"page_number"`
	BBox        *model.BoundingBox `json:"bbox"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}
