package tables

import (
	"context"
	"testing"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

func cellSpan(text string, x, y float64) reader.RawSpan {
	return reader.RawSpan{
		Text:   text,
		BBox:   model.NewBoundingBox(x, y, x+40, y+10),
		Size:   10,
		Origin: model.Point{X: x, Y: y},
	}
}

func pageWithSpans(spans ...reader.RawSpan) *reader.RawPage {
	lines := make([]reader.RawLine, len(spans))
	for i, s := range spans {
		lines[i] = reader.RawLine{Spans: []reader.RawSpan{s}, BBox: s.BBox}
	}
	return &reader.RawPage{
		Number: 1,
		Width:  612,
		Height: 792,
		Blocks: []reader.RawBlock{{Number: 0, BBox: model.NewBoundingBox(0, 0, 612, 792), Lines: lines}},
	}
}

func hRule(y, x0, x1 float64) reader.RuleLine { return reader.RuleLine{X0: x0, Y0: y, X1: x1, Y1: y} }
func vRule(x, y0, y1 float64) reader.RuleLine { return reader.RuleLine{X0: x, Y0: y0, X1: x, Y1: y1} }

// ruledFixture is a 2x2 bordered table between x 100-300 and y 100-140.
func ruledFixture() *reader.RawPage {
	page := pageWithSpans(
		cellSpan("Name", 110, 104),
		cellSpan("Qty", 210, 104),
		cellSpan("Widget", 110, 124),
		cellSpan("5", 210, 124),
	)
	page.Rules = []reader.RuleLine{
		hRule(100, 100, 300), hRule(120, 100, 300), hRule(140, 100, 300),
		vRule(100, 100, 140), vRule(200, 100, 140), vRule(300, 100, 140),
	}
	return page
}

func TestRuledDetector(t *testing.T) {
	grids, err := NewRuledDetector().Extract(context.Background(), ruledFixture())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(grids) != 1 {
		t.Fatalf("got %d grids, want 1", len(grids))
	}
	g := grids[0]
	want := [][]string{{"Name", "Qty"}, {"Widget", "5"}}
	if len(g.Cells) != 2 || len(g.Cells[0]) != 2 {
		t.Fatalf("grid shape %dx%d, want 2x2", len(g.Cells), len(g.Cells[0]))
	}
	for i := range want {
		for j := range want[i] {
			if g.Cells[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, g.Cells[i][j], want[i][j])
			}
		}
	}
	if g.BBox.X0 != 100 || g.BBox.Y0 != 100 || g.BBox.X1 != 300 || g.BBox.Y1 != 140 {
		t.Errorf("grid bbox = %+v", g.BBox)
	}
}

func TestRuledDetectorNeedsEnoughTracks(t *testing.T) {
	page := pageWithSpans(cellSpan("text", 110, 104))
	page.Rules = []reader.RuleLine{hRule(100, 100, 300), hRule(140, 100, 300)}
	grids, err := NewRuledDetector().Extract(context.Background(), page)
	if err != nil || grids != nil {
		t.Errorf("got grids %v err %v, want none", grids, err)
	}
}

func TestRuledDetectorIgnoresShortRules(t *testing.T) {
	page := ruledFixture()
	// Underline-length tick marks must not create extra tracks.
	page.Rules = append(page.Rules, hRule(110, 100, 105), hRule(130, 100, 105))
	grids, err := NewRuledDetector().Extract(context.Background(), page)
	if err != nil || len(grids) != 1 {
		t.Fatalf("got %d grids err %v, want 1", len(grids), err)
	}
	if len(grids[0].Cells) != 2 {
		t.Errorf("grid has %d rows, want 2", len(grids[0].Cells))
	}
}

func TestUnruledDetector(t *testing.T) {
	page := pageWithSpans(
		cellSpan("Name", 100, 100), cellSpan("Qty", 250, 100),
		cellSpan("Widget", 100, 115), cellSpan("5", 250, 115),
		cellSpan("Gadget", 100, 130), cellSpan("2", 250, 130),
	)
	grids, err := NewUnruledDetector().Extract(context.Background(), page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(grids) != 1 {
		t.Fatalf("got %d grids, want 1", len(grids))
	}
	g := grids[0]
	want := [][]string{{"Name", "Qty"}, {"Widget", "5"}, {"Gadget", "2"}}
	if len(g.Cells) != 3 || len(g.Cells[0]) != 2 {
		t.Fatalf("grid shape %dx%d, want 3x2", len(g.Cells), len(g.Cells[0]))
	}
	for i := range want {
		for j := range want[i] {
			if g.Cells[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, g.Cells[i][j], want[i][j])
			}
		}
	}
}

func TestUnruledDetectorRejectsParagraphs(t *testing.T) {
	page := pageWithSpans(
		cellSpan("This is just", 72, 100),
		cellSpan("ordinary prose", 72, 115),
		cellSpan("in one column", 72, 130),
		cellSpan("with no table", 72, 145),
	)
	grids, err := NewUnruledDetector().Extract(context.Background(), page)
	if err != nil || len(grids) != 0 {
		t.Errorf("got %d grids err %v, want none for prose", len(grids), err)
	}
}

func TestDetectorsHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRuledDetector().Extract(ctx, ruledFixture()); err == nil {
		t.Error("ruled detector ignored canceled context")
	}
	if _, err := NewUnruledDetector().Extract(ctx, ruledFixture()); err == nil {
		t.Error("unruled detector ignored canceled context")
	}
}
