package pdfstruct

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdfstruct/pdfstruct/config"
	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// fakeSource drives the pipeline without a real PDF. A nil page entry
// simulates a page that fails to load.
type fakeSource struct {
	pages  []*reader.RawPage
	meta   model.DocumentMetadata
	closed int
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) Page(ctx context.Context, n int) (*reader.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > len(f.pages) {
		return nil, fmt.Errorf("page %d out of range", n)
	}
	if f.pages[n-1] == nil {
		return nil, fmt.Errorf("damaged page")
	}
	return f.pages[n-1], nil
}

func (f *fakeSource) Metadata() model.DocumentMetadata { return f.meta }

func (f *fakeSource) Close() error {
	f.closed++
	return nil
}

type spanSpec struct {
	text string
	y    float64
	size float64
	bold bool
}

func rawPage(number int, spans ...spanSpec) *reader.RawPage {
	page := &reader.RawPage{Number: number, Width: 612, Height: 792}
	for i, s := range spans {
		flags := 0
		if s.bold {
			flags = 1 << 4
		}
		bbox := model.NewBoundingBox(72, s.y, 72+float64(len(s.text))*s.size*0.5, s.y+s.size)
		page.Blocks = append(page.Blocks, reader.RawBlock{
			Number: i,
			Type:   model.BlockTypeText,
			BBox:   bbox,
			Lines: []reader.RawLine{{
				Spans: []reader.RawSpan{{Text: s.text, BBox: bbox, Font: "Helvetica", Size: s.size, Flags: flags}},
				BBox:  bbox,
			}},
		})
	}
	return page
}

func twoPageSource() *fakeSource {
	return &fakeSource{
		pages: []*reader.RawPage{
			rawPage(1,
				spanSpec{text: "Introduction", y: 100, size: 24, bold: true},
				spanSpec{text: "Body text on the first page.", y: 160, size: 12},
				spanSpec{text: "A second paragraph follows it.", y: 300, size: 12},
			),
			rawPage(2,
				spanSpec{text: "Conclusion", y: 100, size: 24, bold: true},
				spanSpec{text: "Closing remarks on the last page.", y: 160, size: 12},
			),
		},
		meta: model.DocumentMetadata{Title: "Sample Report", PageCount: 2},
	}
}

func TestConfigMethodsReturnNewExtractor(t *testing.T) {
	base := Open("document.pdf")
	modified := base.Pages(1, 2).Mode(config.ModeFast)

	if base.options.pages != nil {
		t.Errorf("base pages modified: %v", base.options.pages)
	}
	if base.options.config.Mode != config.ModeStandard {
		t.Errorf("base mode modified: %v", base.options.config.Mode)
	}
	if len(modified.options.pages) != 2 {
		t.Errorf("pages not applied: %v", modified.options.pages)
	}
	if modified.options.config.Mode != config.ModeFast {
		t.Errorf("mode not applied: %v", modified.options.config.Mode)
	}
	if modified == base {
		t.Error("expected a new extractor from config methods")
	}
}

func TestPageRangeInvalidFailsFast(t *testing.T) {
	ex := Open("document.pdf").PageRange(3, 1)
	if ex.Err() == nil {
		t.Fatal("expected error from inverted range")
	}
	if _, err := ex.Extract(); err == nil {
		t.Error("expected Extract to report the configuration error")
	}
}

func TestInvalidModeFailsFast(t *testing.T) {
	ex := Open("document.pdf").Mode("turbo")
	if ex.Err() == nil {
		t.Fatal("expected error from unknown mode")
	}
}

func TestExtractBuildsStructure(t *testing.T) {
	src := twoPageSource()
	src.pages[1].Rotation = 90
	result, err := FromSource(src).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(result.Pages))
	}
	if result.Pages[1].Rotation != 90 {
		t.Errorf("rotation = %d, want 90 carried through", result.Pages[1].Rotation)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if result.Metadata.Title != "Sample Report" {
		t.Errorf("metadata title = %q", result.Metadata.Title)
	}
	if result.ProcessingTime <= 0 {
		t.Error("processing time not recorded")
	}

	if result.Structure == nil {
		t.Fatal("expected a section tree")
	}
	if len(result.Structure.Sections) != 2 {
		t.Fatalf("root sections = %d, want 2", len(result.Structure.Sections))
	}
	if got := result.Structure.Sections[0].Title; got != "Introduction" {
		t.Errorf("first section = %q, want Introduction", got)
	}
	if got := result.Structure.Sections[1].Title; got != "Conclusion" {
		t.Errorf("second section = %q, want Conclusion", got)
	}
	if len(result.Structure.Sections[0].Content) == 0 {
		t.Error("Introduction section has no content")
	}
}

func TestExtractPageFailureIsolated(t *testing.T) {
	src := twoPageSource()
	src.pages = append(src.pages, nil)
	src.pages[1], src.pages[2] = src.pages[2], src.pages[1]

	result, err := FromSource(src).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("pages = %d, want 2 surviving", len(result.Pages))
	}
	if result.Pages[0].Number != 1 || result.Pages[1].Number != 3 {
		t.Errorf("surviving pages = %d, %d", result.Pages[0].Number, result.Pages[1].Number)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "page 2 reader") {
		t.Errorf("error = %q, want page and stage", result.Errors[0])
	}
}

func TestPageSelection(t *testing.T) {
	src := twoPageSource()
	result, err := FromSource(src).Pages(2, 2, 1).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("pages = %d, want deduplicated 2", len(result.Pages))
	}
	if result.Pages[0].Number != 1 || result.Pages[1].Number != 2 {
		t.Errorf("page order = %d, %d, want ascending", result.Pages[0].Number, result.Pages[1].Number)
	}

	if _, err := FromSource(src).Pages(5).Extract(); err == nil {
		t.Error("expected out of range error")
	}
}

func TestModeResolvesStageFlags(t *testing.T) {
	tests := []struct {
		mode   config.Mode
		tables bool
		images bool
	}{
		{config.ModeFast, false, false},
		{config.ModeStandard, true, false},
		{config.ModeDetailed, true, true},
	}
	for _, tt := range tests {
		snap := Open("x.pdf").Mode(tt.mode).snapshot()
		if snap.ExtractTables != tt.tables || snap.ExtractImages != tt.images {
			t.Errorf("%s: tables=%v images=%v, want %v/%v",
				tt.mode, snap.ExtractTables, snap.ExtractImages, tt.tables, tt.images)
		}
	}
}

func TestFromSourceDoesNotCloseSource(t *testing.T) {
	src := twoPageSource()
	ex := FromSource(src)
	if _, err := ex.Extract(); err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	if src.closed != 0 {
		t.Fatalf("source closed %d times by borrowed extractor", src.closed)
	}
	// The source stays open, so a second terminal operation works.
	if _, err := ex.PageCount(); err != nil {
		t.Fatalf("second terminal operation: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	ex := FromSource(twoPageSource())
	if err := ex.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := ex.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestExtractContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromSource(twoPageSource()).ExtractContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestJSONTerminal(t *testing.T) {
	data, err := FromSource(twoPageSource()).JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("invalid JSON output")
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"document", "metadata", "extraction_info"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	info := doc["extraction_info"].(map[string]any)
	cfg := info["extraction_config"].(map[string]any)
	if cfg["mode"] != "standard" {
		t.Errorf("snapshot mode = %v", cfg["mode"])
	}
}

func TestTextTerminal(t *testing.T) {
	text, err := FromSource(twoPageSource()).Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	for _, want := range []string{"Introduction", "Body text on the first page.", "Conclusion"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
}

func TestMinimalCleaningStillNormalizes(t *testing.T) {
	src := &fakeSource{
		pages: []*reader.RawPage{
			rawPage(1, spanSpec{text: "Spaced   out   text.", y: 120, size: 12}),
		},
	}
	result, err := FromSource(src).CleaningLevel(config.CleaningMinimal).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := result.Pages[0].Blocks[0].Text; got != "Spaced out text." {
		t.Errorf("text = %q, want collapsed whitespace", got)
	}
}

func TestMustPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must(0, errors.New("boom"))
}
