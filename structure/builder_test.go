package structure

import (
	"testing"

	"github.com/pdfstruct/pdfstruct/model"
)

const boldFlag = 1 << 4

func block(text string, ct model.ContentType, size float64, flags int, y float64) model.TextBlock {
	font := model.FontInfo{Name: "Helvetica", Size: size, Flags: flags}
	return model.TextBlock{
		Text:       text,
		Type:       ct,
		BBox:       model.NewBoundingBox(72, y, 400, y+size),
		FontInfo:   font.AsMap(),
		Confidence: 1.0,
	}
}

func onePage(blocks ...model.TextBlock) []model.PageContent {
	return []model.PageContent{{Number: 1, Width: 612, Height: 792, Blocks: blocks}}
}

func levelsIncreasing(h *HeaderStack) bool {
	for i := 1; i < len(h.stack); i++ {
		if h.stack[i].Level <= h.stack[i-1].Level {
			return false
		}
	}
	return true
}

func TestHeaderStackLevelsStrictlyIncreasing(t *testing.T) {
	stack := NewHeaderStack()
	for _, level := range []model.HeaderLevel{1, 2, 4, 3, 2, 6, 1} {
		stack.Push(&model.SectionNode{Title: level.String(), Level: level})
		if !levelsIncreasing(stack) {
			t.Fatalf("levels not strictly increasing after pushing %v", level)
		}
	}
	if got := stack.Depth(); got != 1 {
		t.Errorf("Depth() = %d, want 1 after final h1 push", got)
	}
	if cur := stack.Current(); cur == nil || cur.Level != model.H1 {
		t.Errorf("Current() = %v, want the final h1 section", cur)
	}
}

func TestHeaderStackPushReportsRoot(t *testing.T) {
	stack := NewHeaderStack()
	h1 := &model.SectionNode{Title: "Top", Level: model.H1}
	h2 := &model.SectionNode{Title: "Sub", Level: model.H2}

	if !stack.Push(h1) {
		t.Error("pushing onto an empty stack should report root")
	}
	if stack.Push(h2) {
		t.Error("pushing under an open shallower section should not report root")
	}
	if len(h1.Children) != 1 || h1.Children[0] != h2 {
		t.Errorf("h2 not attached to h1, children = %v", h1.Children)
	}
	if got := stack.AtLevel(model.H2); got != h2 {
		t.Errorf("AtLevel(H2) = %v, want the sub section", got)
	}

	stack.Clear()
	if !stack.IsEmpty() {
		t.Error("stack not empty after Clear")
	}
}

func TestBuildNestsSections(t *testing.T) {
	pages := onePage(
		block("Overview", model.ContentTypeHeader1, 20, boldFlag, 72),
		block("Background", model.ContentTypeHeader2, 16, boldFlag, 120),
		block("Some background prose.", model.ContentTypeParagraph, 11, 0, 150),
		block("Goals", model.ContentTypeHeader2, 16, boldFlag, 300),
		block("Details", model.ContentTypeHeader1, 20, boldFlag, 500),
	)

	doc := NewBuilder().Build(pages, "Sample")
	if doc.Title != "Sample" || doc.TotalPages != 1 {
		t.Fatalf("doc = %q/%d pages, want Sample/1", doc.Title, doc.TotalPages)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d root sections, want 2", len(doc.Sections))
	}

	overview := doc.Sections[0]
	if overview.Title != "Overview" || overview.Level != model.H1 {
		t.Errorf("root section = %q/%v, want Overview/h1", overview.Title, overview.Level)
	}
	if len(overview.Children) != 2 {
		t.Fatalf("Overview has %d children, want 2", len(overview.Children))
	}
	if overview.Children[0].Title != "Background" || overview.Children[1].Title != "Goals" {
		t.Errorf("children = %q, %q", overview.Children[0].Title, overview.Children[1].Title)
	}
	if n := len(overview.Children[0].Content); n != 1 {
		t.Errorf("Background holds %d blocks, want 1", n)
	}
	if doc.Sections[1].Title != "Details" {
		t.Errorf("second root = %q, want Details", doc.Sections[1].Title)
	}
	if got := doc.SectionCount(); got != 4 {
		t.Errorf("SectionCount() = %d, want 4", got)
	}
}

func TestBuildGenericHeaderBecomesTopLevel(t *testing.T) {
	pages := onePage(
		block("Introduction", model.ContentTypeHeader, 16, boldFlag, 72),
		block("First body paragraph.", model.ContentTypeParagraph, 11, 0, 110),
		block("Second body paragraph.", model.ContentTypeParagraph, 11, 0, 160),
	)

	doc := NewBuilder().Build(pages, "")
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	intro := doc.Sections[0]
	if intro.Title != "Introduction" || intro.Level != model.H1 {
		t.Errorf("section = %q/%v, want Introduction/h1", intro.Title, intro.Level)
	}
	if len(intro.Content) != 2 {
		t.Fatalf("section holds %d blocks, want 2", len(intro.Content))
	}
	for i, blk := range intro.Content {
		if got := blk.Meta("position_in_section"); got != i {
			t.Errorf("block %d position_in_section = %v, want %d", i, got, i)
		}
		parent, ok := blk.Meta("parent_section").(map[string]any)
		if !ok || parent["title"] != "Introduction" || parent["level"] != 1 {
			t.Errorf("block %d parent_section = %v", i, blk.Meta("parent_section"))
		}
	}
}

func TestBuildCreatesDefaultSections(t *testing.T) {
	tests := []struct {
		name      string
		page      model.PageContent
		wantTitle string
		wantKind  string
	}{
		{
			name: "table first",
			page: model.PageContent{Number: 1, Tables: []model.Table{{
				Page: 1, BBox: model.NewBoundingBox(72, 100, 500, 300),
				Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}},
			}}},
			wantTitle: "Tables and Data",
			wantKind:  "table",
		},
		{
			name: "image first",
			page: model.PageContent{Number: 1, Images: []model.ImageInfo{{
				ID: "page_1_img_0_9", Page: 1, BBox: model.NewBoundingBox(72, 100, 300, 250),
			}}},
			wantTitle: "Images and Figures",
			wantKind:  "image",
		},
		{
			name: "text first",
			page: model.PageContent{Number: 1, Blocks: []model.TextBlock{
				block("Loose text before any header.", model.ContentTypeParagraph, 11, 0, 100),
			}},
			wantTitle: "Content",
			wantKind:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewBuilder().Build([]model.PageContent{tt.page}, "")
			if len(doc.Sections) != 1 {
				t.Fatalf("got %d sections, want 1", len(doc.Sections))
			}
			s := doc.Sections[0]
			if s.Title != tt.wantTitle || s.Level != model.H1 {
				t.Errorf("section = %q/%v, want %q/h1", s.Title, s.Level, tt.wantTitle)
			}
			if s.Metadata["is_default_section"] != true {
				t.Error("is_default_section not set")
			}
			if got := s.Metadata["created_for_content_type"]; got != tt.wantKind {
				t.Errorf("created_for_content_type = %v, want %q", got, tt.wantKind)
			}
			if s.ContentCount() != 1 {
				t.Errorf("ContentCount() = %d, want 1", s.ContentCount())
			}
		})
	}
}

func TestBuildContentStats(t *testing.T) {
	page := model.PageContent{
		Number: 1,
		Blocks: []model.TextBlock{
			block("Results", model.ContentTypeHeader1, 20, boldFlag, 72),
			block("A paragraph.", model.ContentTypeParagraph, 11, 0, 110),
			block("- a list item", model.ContentTypeList, 11, 0, 160),
			block("plain text", model.ContentTypeText, 11, 0, 200),
			block("Page 3", model.ContentTypeFooter, 9, 0, 760),
		},
		Tables: []model.Table{{
			Page: 1, BBox: model.NewBoundingBox(72, 300, 500, 400),
			Rows: [][]string{{"x", "y"}},
		}},
		Images: []model.ImageInfo{{
			ID: "page_1_img_0_4", Page: 1, BBox: model.NewBoundingBox(72, 450, 300, 600),
		}},
	}

	doc := NewBuilder().Build([]model.PageContent{page}, "")
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	stats, ok := doc.Sections[0].Metadata["content_stats"].(map[string]int)
	if !ok {
		t.Fatal("content_stats missing")
	}
	want := map[string]int{
		"total_blocks": 6,
		"text_blocks":  1,
		"tables":       1,
		"images":       1,
		"paragraphs":   1,
		"lists":        1,
		"other":        1,
	}
	for key, n := range want {
		if stats[key] != n {
			t.Errorf("content_stats[%q] = %d, want %d", key, stats[key], n)
		}
	}
}

func TestBuildAssociatesAcrossPages(t *testing.T) {
	pages := []model.PageContent{
		{Number: 1, Blocks: []model.TextBlock{
			block("Methods", model.ContentTypeHeader1, 20, boldFlag, 600),
		}},
		{Number: 2, Blocks: []model.TextBlock{
			block("Continued on the next page.", model.ContentTypeParagraph, 11, 0, 72),
		}},
	}

	doc := NewBuilder().Build(pages, "")
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	methods := doc.Sections[0]
	if methods.Page != 1 || len(methods.Content) != 1 {
		t.Fatalf("section page=%d content=%d, want 1/1", methods.Page, len(methods.Content))
	}
	if got := methods.Content[0].Meta("page_number"); got != 2 {
		t.Errorf("content page_number = %v, want 2", got)
	}
}

func TestBuildSortsPageIntoReadingOrder(t *testing.T) {
	pages := onePage(
		block("second", model.ContentTypeParagraph, 11, 0, 200),
		block("Title", model.ContentTypeHeader1, 20, boldFlag, 72),
		block("first", model.ContentTypeParagraph, 11, 0, 110),
	)

	doc := NewBuilder().Build(pages, "")
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	content := doc.Sections[0].Content
	if len(content) != 2 || content[0].Text != "first" || content[1].Text != "second" {
		t.Fatalf("content order wrong: %+v", content)
	}
}

func TestHeaderLevelPrecedence(t *testing.T) {
	b := NewBuilder()
	explicit := block("Deep", model.ContentTypeHeader3, 24, boldFlag, 72)
	if got := b.headerLevel(&explicit); got != model.H3 {
		t.Errorf("explicit header_3 at 24pt gave %v, want h3", got)
	}
}

func TestInferLevel(t *testing.T) {
	tests := []struct {
		size float64
		bold bool
		want model.HeaderLevel
	}{
		{20, false, model.H1},
		{18, false, model.H1},
		{16.5, true, model.H2},
		{14, false, model.H3},
		{12.5, true, model.H4},
		{12, false, model.H5},
		{10, true, model.H6},
	}
	b := NewBuilder()
	for _, tt := range tests {
		flags := 0
		if tt.bold {
			flags = boldFlag
		}
		blk := block("x", model.ContentTypeText, tt.size, flags, 72)
		if got := b.inferLevel(&blk); got != tt.want {
			t.Errorf("inferLevel(size=%.1f bold=%v) = %v, want %v", tt.size, tt.bold, got, tt.want)
		}
	}
}

func TestBuildFromBlocks(t *testing.T) {
	doc := NewBuilder().BuildFromBlocks([]model.TextBlock{
		block("Notes", model.ContentTypeHeader, 16, boldFlag, 72),
		block("A note.", model.ContentTypeParagraph, 11, 0, 110),
	}, "Notes Doc")
	if doc.TotalPages != 1 || len(doc.Sections) != 1 {
		t.Fatalf("pages=%d sections=%d, want 1/1", doc.TotalPages, len(doc.Sections))
	}
	if doc.Sections[0].Title != "Notes" || len(doc.Sections[0].Content) != 1 {
		t.Errorf("section = %q with %d blocks", doc.Sections[0].Title, len(doc.Sections[0].Content))
	}
}
