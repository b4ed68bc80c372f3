package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdfstruct/pdfstruct/model"
)

// Config holds output assembly settings.
type Config struct {
	// Indent is the number of spaces per indentation level. Zero
	// writes compact JSON.
	Indent int

	// Validate runs the structural checks on every built output and
	// logs a warning on failure.
	Validate bool

	// Debug enables debug logging.
	Debug bool

	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns the default output settings.
func DefaultConfig() Config {
	return Config{Indent: 2, Validate: true}
}

// Builder assembles extraction results into Output documents.
type Builder struct {
	config Config
	logger *slog.Logger
}

// NewBuilder creates a builder with default settings.
func NewBuilder() *Builder { return NewBuilderWithConfig(DefaultConfig()) }

// NewBuilderWithConfig creates a builder with custom settings.
func NewBuilderWithConfig(config Config) *Builder {
	if config.Indent < 0 {
		config.Indent = 0
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{config: config, logger: logger}
}

// Build assembles the full output document. Results carrying a section
// tree are emitted hierarchically; results without one fall back to a
// flat per-page layout.
func (b *Builder) Build(result *model.ExtractionResult, snapshot ConfigSnapshot) *Output {
	structure := result.Structure
	if structure == nil {
		structure = pagesToStructure(result)
	}

	out := &Output{
		Document:       b.buildDocument(structure),
		Metadata:       b.buildMetadata(result),
		ExtractionInfo: b.buildInfo(result, snapshot),
	}

	if b.config.Validate {
		if err := Validate(out); err != nil {
			b.logger.Warn("output validation failed", "error", err)
		} else if b.config.Debug {
			b.logger.Debug("output validated")
		}
	}
	return out
}

// JSON serializes the output as UTF-8 JSON, indented per the config.
func (b *Builder) JSON(out *Output) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if b.config.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", b.config.Indent))
	}
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes the output and writes it to path.
func (b *Builder) WriteFile(path string, out *Output) error {
	data, err := b.JSON(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	b.logger.Debug("output written", "path", path, "bytes", len(data))
	return nil
}

func (b *Builder) buildDocument(structure *model.DocumentStructure) Document {
	content := make([]any, 0, len(structure.Sections))
	for _, section := range structure.Sections {
		content = append(content, b.sectionItem(section))
	}

	counts := map[string]int{
		"headers":    0,
		"paragraphs": 0,
		"tables":     0,
		"images":     0,
		"lists":      0,
	}
	totalSections := 0
	totalBlocks := 0
	structure.Walk(func(section *model.SectionNode) bool {
		totalSections++
		totalBlocks += section.ContentCount()
		if auto, _ := section.Metadata["auto_generated"].(bool); !auto {
			counts["headers"]++
		}
		for _, block := range section.Content {
			switch {
			case block.Type.IsHeaderType():
				counts["headers"]++
			case block.Type == model.ContentTypeList:
				counts["lists"]++
			default:
				counts["paragraphs"]++
			}
		}
		counts["tables"] += len(section.Tables)
		counts["images"] += len(section.Images)
		return true
	})

	return Document{
		Title:   structure.Title,
		Content: content,
		Summary: Summary{
			TotalSections:      totalSections,
			TotalPages:         structure.TotalPages,
			TotalContentBlocks: totalBlocks,
			ContentTypes:       counts,
		},
	}
}

func (b *Builder) buildMetadata(result *model.ExtractionResult) Metadata {
	pageCount := len(result.Pages)
	if pageCount == 0 {
		pageCount = result.Metadata.PageCount
	}
	return Metadata{
		FilePath:     result.FilePath,
		PageCount:    pageCount,
		Title:        result.Metadata.Title,
		Author:       result.Metadata.Author,
		Subject:      result.Metadata.Subject,
		Creator:      result.Metadata.Creator,
		Producer:     result.Metadata.Producer,
		CreationDate: result.Metadata.CreationDate,
		ModDate:      result.Metadata.ModDate,
		Encrypted:    result.Metadata.Encrypted,
	}
}

func (b *Builder) buildInfo(result *model.ExtractionResult, snapshot ConfigSnapshot) ExtractionInfo {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return ExtractionInfo{
		ProcessingTime: result.ProcessingTime.Seconds(),
		Config:         snapshot,
		Errors:         errs,
		Warnings:       warnings,
	}
}

func (b *Builder) sectionItem(section *model.SectionNode) SectionItem {
	content := make([]any, 0,
		section.ContentCount()+len(section.Children))
	for _, block := range section.Content {
		content = append(content, b.blockItem(block))
	}
	for _, table := range section.Tables {
		content = append(content, b.tableItem(table))
	}
	for _, image := range section.Images {
		content = append(content, b.imageItem(image))
	}
	for _, child := range section.Children {
		content = append(content, b.sectionItem(child))
	}

	return SectionItem{
		Type:       "section",
		Title:      section.Title,
		Level:      int(section.Level),
		Content:    content,
		PageNumber: section.Page,
		BBox:       bboxPtr(section.BBox),
		Metadata:   section.Metadata,
	}
}

func (b *Builder) blockItem(block model.TextBlock) any {
	page := metaInt(block.Metadata, "page_number")
	switch {
	case block.Type.IsHeaderType():
		level := block.Type.GetHeaderLevel()
		if level == 0 {
			level = 1
		}
		return HeaderItem{
			Type:       "header",
			Text:       block.Text,
			Level:      level,
			PageNumber: page,
			BBox:       bboxPtr(block.BBox),
			FontInfo:   block.FontInfo,
			Metadata:   block.Metadata,
		}
	case block.Type == model.ContentTypeList:
		entries := listEntries(block.Text)
		listType := "unordered"
		if len(entries) > 0 && entries[0].BulletType == "number" {
			listType = "ordered"
		}
		return ListItem{
			Type:       "list",
			Items:      entries,
			ListType:   listType,
			PageNumber: page,
			BBox:       bboxPtr(block.BBox),
			Metadata:   block.Metadata,
		}
	default:
		return ParagraphItem{
			Type:       "paragraph",
			Text:       block.Text,
			PageNumber: page,
			BBox:       bboxPtr(block.BBox),
			FontInfo:   block.FontInfo,
			Confidence: block.Confidence,
			Metadata:   block.Metadata,
		}
	}
}

func (b *Builder) tableItem(table model.Table) TableItem {
	// The dense grid keeps ragged backend rows out of the output.
	_, cols := table.Dimensions()
	data := table.To2DArray()
	if len(table.Headers) > 0 && len(data) > 0 {
		data = data[1:]
	}
	headers := table.Headers
	if headers == nil {
		headers = []string{}
	}
	return TableItem{
		Type:             "table",
		Data:             data,
		Headers:          headers,
		Rows:             len(data),
		Cols:             cols,
		PageNumber:       table.Page,
		BBox:             bboxPtr(table.BBox),
		ExtractionMethod: table.Method,
		Confidence:       table.Confidence,
		Metadata:         table.Metadata,
	}
}

func (b *Builder) imageItem(image model.ImageInfo) ImageItem {
	return ImageItem{
		Type:        "image",
		ImageID:     image.ID,
		Description: image.Caption,
		Width:       image.Width,
		Height:      image.Height,
		Format:      image.Format,
		SizeBytes:   image.SizeBytes,
		PageNumber:  image.Page,
		BBox:        bboxPtr(image.BBox),
		Metadata:    image.Metadata,
	}
}

var (
	numberedEntryRe = regexp.MustCompile(`^\d+[.)]\s*`)
	letteredEntryRe = regexp.MustCompile(`^[a-z]\)\s*`)
)

// listEntries splits a list block into per-line entries with detected
// bullet types.
func listEntries(text string) []ListEntry {
	var entries []ListEntry
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		bulletType := "bullet"
		entry := line
		switch {
		case numberedEntryRe.MatchString(line):
			bulletType = "number"
			entry = numberedEntryRe.ReplaceAllString(line, "")
		case strings.HasPrefix(line, "•"), strings.HasPrefix(line, "*"),
			strings.HasPrefix(line, "-"):
			_, size := utf8.DecodeRuneInString(line)
			entry = strings.TrimSpace(line[size:])
		case letteredEntryRe.MatchString(line):
			bulletType = "letter"
			entry = letteredEntryRe.ReplaceAllString(line, "")
		}

		entries = append(entries, ListEntry{
			Text:       entry,
			Level:      0,
			BulletType: bulletType,
		})
	}
	return entries
}

// pagesToStructure builds a flat one-section-per-page tree for results
// that never went through the structure builder.
func pagesToStructure(result *model.ExtractionResult) *model.DocumentStructure {
	structure := &model.DocumentStructure{
		Title:      result.Metadata.Title,
		TotalPages: len(result.Pages),
	}
	for _, page := range result.Pages {
		section := &model.SectionNode{
			Title:    fmt.Sprintf("Page %d", page.Number),
			Level:    model.H1,
			Page:     page.Number,
			Content:  page.Blocks,
			Tables:   page.Tables,
			Images:   page.Images,
			Metadata: map[string]any{"auto_generated": true},
		}
		structure.Sections = append(structure.Sections, section)
	}
	return structure
}

func bboxPtr(b model.BoundingBox) *model.BoundingBox {
	if b.IsZero() {
		return nil
	}
	bb := b
	return &bb
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
