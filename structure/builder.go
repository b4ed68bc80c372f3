package structure

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
)

// Config controls section tree construction.
type Config struct {
	// AutoDetectHeaders enables font based level inference for header
	// blocks that carry no explicit level in their content type.
	AutoDetectHeaders bool

	// MinHeaderFontSize is the smallest font size the inference ladder
	// still treats as a mid-level header.
	MinHeaderFontSize float64

	// Debug enables verbose logging during construction.
	Debug bool

	// Logger receives debug output. slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the standard builder configuration.
func DefaultConfig() Config {
	return Config{
		AutoDetectHeaders: true,
		MinHeaderFontSize: 12.0,
	}
}

// Builder folds classified page content into a DocumentStructure.
type Builder struct {
	config Config
	logger *slog.Logger
}

// NewBuilder creates a builder with the default configuration.
func NewBuilder() *Builder {
	return NewBuilderWithConfig(DefaultConfig())
}

// NewBuilderWithConfig creates a builder with a custom configuration.
func NewBuilderWithConfig(config Config) *Builder {
	if config.MinHeaderFontSize <= 0 {
		config.MinHeaderFontSize = 12.0
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{config: config, logger: logger}
}

// contentItem is one positioned thing on a page: a text block, a table
// or an image. Exactly one of the three pointers is set.
type contentItem struct {
	page  int
	y0    float64
	x0    float64
	block *model.TextBlock
	table *model.Table
	image *model.ImageInfo
}

// Build scans pages in order and groups their content under the headers
// that precede it. Content arriving before any header goes into an
// automatically created section named for its kind. Blocks, tables and
// images in the given pages are stamped with provenance metadata as a
// side effect.
func (b *Builder) Build(pages []model.PageContent, title string) *model.DocumentStructure {
	doc := &model.DocumentStructure{
		Title:      title,
		TotalPages: len(pages),
		Metadata:   map[string]any{},
	}
	items := b.collect(pages)

	stack := NewHeaderStack()
	sectionCount := 0
	for i := range items {
		item := &items[i]
		if item.block != nil && item.block.Type.IsHeaderType() {
			sectionCount++
			section := b.newSection(item.block, item.page, sectionCount)
			if stack.Push(section) {
				doc.Sections = append(doc.Sections, section)
			}
			continue
		}
		section := stack.Current()
		if section == nil {
			sectionCount++
			section = b.defaultSection(item, sectionCount)
			stack.Push(section)
			doc.Sections = append(doc.Sections, section)
		}
		b.attach(section, item)
	}

	if b.config.Debug {
		b.logger.Debug("structure built",
			"title", title,
			"sections", doc.SectionCount(),
			"items", len(items))
	}
	return doc
}

// BuildFromBlocks builds a structure from classified blocks when no
// page containers are available. The blocks are treated as a single
// page in the order implied by their positions.
func (b *Builder) BuildFromBlocks(blocks []model.TextBlock, title string) *model.DocumentStructure {
	page := model.PageContent{Number: 1, Blocks: blocks}
	return b.Build([]model.PageContent{page}, title)
}

// collect flattens pages into a single item list, sorted into reading
// order within each page and tagged with the page number.
func (b *Builder) collect(pages []model.PageContent) []contentItem {
	var all []contentItem
	for pi := range pages {
		page := &pages[pi]
		items := make([]contentItem, 0, len(page.Blocks)+len(page.Tables)+len(page.Images))
		for bi := range page.Blocks {
			block := &page.Blocks[bi]
			block.SetMeta("page_number", page.Number)
			items = append(items, contentItem{
				page: page.Number, y0: block.BBox.Y0, x0: block.BBox.X0, block: block,
			})
		}
		for ti := range page.Tables {
			table := &page.Tables[ti]
			items = append(items, contentItem{
				page: page.Number, y0: table.BBox.Y0, x0: table.BBox.X0, table: table,
			})
		}
		for ii := range page.Images {
			img := &page.Images[ii]
			items = append(items, contentItem{
				page: page.Number, y0: img.BBox.Y0, x0: img.BBox.X0, image: img,
			})
		}
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].y0 != items[j].y0 {
				return items[i].y0 < items[j].y0
			}
			return items[i].x0 < items[j].x0
		})
		all = append(all, items...)
	}
	return all
}

// newSection creates a section for a header block.
func (b *Builder) newSection(block *model.TextBlock, page, id int) *model.SectionNode {
	return &model.SectionNode{
		Title: strings.TrimSpace(block.Text),
		Level: b.headerLevel(block),
		Page:  page,
		BBox:  block.BBox,
		Metadata: map[string]any{
			"section_id": fmt.Sprintf("section_%d", id),
			"header_block": map[string]any{
				"content_type": block.Type.String(),
				"confidence":   block.Confidence,
				"font_info":    block.FontInfo,
			},
			"content_stats": newContentStats(),
		},
	}
}

// headerLevel picks the section level. An explicit level encoded in the
// content type wins; without one, font attributes decide.
func (b *Builder) headerLevel(block *model.TextBlock) model.HeaderLevel {
	if n := block.Type.GetHeaderLevel(); n > 0 {
		if level, err := model.HeaderLevelFromInt(n); err == nil {
			return level
		}
	}
	if b.config.AutoDetectHeaders {
		return b.inferLevel(block)
	}
	return model.H1
}

// inferLevel maps font size and weight to a header level.
func (b *Builder) inferLevel(block *model.TextBlock) model.HeaderLevel {
	size, _ := block.FontInfo["size"].(float64)
	bold, _ := block.FontInfo["bold"].(bool)
	switch {
	case size >= 18:
		return model.H1
	case size >= 16:
		return model.H2
	case size >= 14:
		return model.H3
	case bold && size >= b.config.MinHeaderFontSize:
		return model.H4
	case size >= b.config.MinHeaderFontSize:
		return model.H5
	default:
		return model.H6
	}
}

// defaultSection creates a container for content that arrives with no
// open section, named for the kind of content that triggered it.
func (b *Builder) defaultSection(item *contentItem, id int) *model.SectionNode {
	title, kind := "Content", "text"
	switch {
	case item.table != nil:
		title, kind = "Tables and Data", "table"
	case item.image != nil:
		title, kind = "Images and Figures", "image"
	}
	if b.config.Debug {
		b.logger.Debug("created default section", "title", title, "page", item.page)
	}
	return &model.SectionNode{
		Title: title,
		Level: model.H1,
		Page:  item.page,
		Metadata: map[string]any{
			"section_id":               fmt.Sprintf("section_%d", id),
			"is_default_section":       true,
			"created_for_content_type": kind,
			"auto_generated":           true,
			"content_stats":            newContentStats(),
		},
	}
}

// attach adds the item to the section, stamping provenance metadata on
// the item and updating the section's content counters.
func (b *Builder) attach(section *model.SectionNode, item *contentItem) {
	position := section.ContentCount()
	parent := map[string]any{
		"title":      section.Title,
		"level":      int(section.Level),
		"section_id": section.Metadata["section_id"],
	}
	stats, _ := section.Metadata["content_stats"].(map[string]int)
	if stats == nil {
		stats = newContentStats()
		section.Metadata["content_stats"] = stats
	}
	stats["total_blocks"]++

	switch {
	case item.block != nil:
		category := blockCategory(item.block.Type)
		item.block.SetMeta("parent_section", parent)
		item.block.SetMeta("content_type_category", category)
		item.block.SetMeta("position_in_section", position)
		section.Content = append(section.Content, *item.block)
		switch item.block.Type {
		case model.ContentTypeParagraph:
			stats["paragraphs"]++
		case model.ContentTypeList:
			stats["lists"]++
		case model.ContentTypeText:
			stats["text_blocks"]++
		default:
			stats["other"]++
		}
	case item.table != nil:
		if item.table.Metadata == nil {
			item.table.Metadata = map[string]any{}
		}
		item.table.Metadata["parent_section"] = parent
		item.table.Metadata["position_in_section"] = position
		section.Tables = append(section.Tables, *item.table)
		stats["tables"]++
	case item.image != nil:
		if item.image.Metadata == nil {
			item.image.Metadata = map[string]any{}
		}
		item.image.Metadata["parent_section"] = parent
		item.image.Metadata["position_in_section"] = position
		section.Images = append(section.Images, *item.image)
		stats["images"]++
	}
}

func newContentStats() map[string]int {
	return map[string]int{
		"total_blocks": 0,
		"text_blocks":  0,
		"tables":       0,
		"images":       0,
		"paragraphs":   0,
		"lists":        0,
		"other":        0,
	}
}

func blockCategory(ct model.ContentType) string {
	switch ct {
	case model.ContentTypeParagraph:
		return "paragraph"
	case model.ContentTypeList:
		return "list"
	case model.ContentTypeFooter:
		return "footer"
	default:
		return "text"
	}
}
