package images

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

func textAt(text string, x0, y0, x1, y1 float64, font map[string]any) model.TextBlock {
	return model.TextBlock{
		Text:     text,
		Type:     model.ContentTypeText,
		BBox:     model.NewBoundingBox(x0, y0, x1, y1),
		FontInfo: font,
	}
}

func pageWithImages(number int, imgs ...reader.RawImage) *reader.RawPage {
	return &reader.RawPage{Number: number, Width: 612, Height: 792, Images: imgs}
}

func TestExtractPageBuildsRecords(t *testing.T) {
	page := pageWithImages(2, reader.RawImage{
		Index:     0,
		XRef:      14,
		BBox:      model.NewBoundingBox(100, 100, 300, 250),
		Width:     640,
		Height:    480,
		Format:    "jpeg",
		SizeBytes: 1234,
	})

	e := NewChartExtractor()
	infos := e.ExtractPage(page, nil)
	if len(infos) != 1 {
		t.Fatalf("got %d images, want 1", len(infos))
	}

	info := infos[0]
	if info.ID != "page_2_img_0_14" {
		t.Errorf("ID = %q", info.ID)
	}
	if info.Page != 2 || info.XRef != 14 || info.Format != "jpeg" {
		t.Errorf("record = %+v", info)
	}
	if info.Metadata["index_on_page"] != 0 || info.Metadata["xref"] != 14 {
		t.Errorf("metadata = %v", info.Metadata)
	}
	if info.HasCaption() {
		t.Errorf("unexpected caption %q", info.Caption)
	}
}

func TestFindCaptionPicksBestCandidate(t *testing.T) {
	page := pageWithImages(1, reader.RawImage{
		Index: 0, XRef: 9,
		BBox: model.NewBoundingBox(100, 100, 300, 250),
	})
	blocks := []model.TextBlock{
		textAt("Figure 1: Quarterly revenue by region.", 120, 260, 280, 272,
			map[string]any{"size": 9.0, "italic": true}),
		textAt("The quarterly numbers continued to improve across all regions this year.",
			72, 280, 540, 292, map[string]any{"size": 12.0}),
		textAt("Earlier body text above the image.", 72, 60, 540, 72,
			map[string]any{"size": 12.0}),
	}

	e := NewChartExtractor()
	infos := e.ExtractPage(page, blocks)
	if len(infos) != 1 {
		t.Fatalf("got %d images", len(infos))
	}
	if infos[0].Caption != "Figure 1: Quarterly revenue by region." {
		t.Errorf("caption = %q", infos[0].Caption)
	}
	if infos[0].CaptionConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", infos[0].CaptionConfidence)
	}
}

func TestFindCaptionBandLimits(t *testing.T) {
	imageBBox := model.NewBoundingBox(100, 100, 300, 250)
	e := NewChartExtractor()

	tests := []struct {
		name   string
		block  model.TextBlock
		wantIn bool
	}{
		{"inside band", textAt("Figure 2: In the band.", 120, 260, 280, 272, nil), true},
		{"below band", textAt("Figure 2: Too far down.", 120, 305, 280, 315, nil), false},
		{"above image", textAt("Figure 2: Above the image.", 120, 90, 280, 98, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caption, _ := e.findCaption(imageBBox, []model.TextBlock{tt.block})
			if got := caption != ""; got != tt.wantIn {
				t.Errorf("caption = %q, want found=%v", caption, tt.wantIn)
			}
		})
	}
}

func TestCaptionScore(t *testing.T) {
	imageBBox := model.NewBoundingBox(100, 100, 300, 250)
	e := NewChartExtractor()

	tests := []struct {
		name  string
		block model.TextBlock
		want  float64
	}{
		{
			"prefixed and centered",
			textAt("Chart 2: Sales growth.", 120, 260, 280, 270, nil),
			5.5,
		},
		{
			"short sentence off center",
			textAt("Hi.", 400, 260, 460, 270, nil),
			0.5,
		},
		{
			"url marker cancels",
			textAt("www.example.com has chart details", 400, 260, 500, 270, nil),
			0,
		},
		{
			"overlong text penalized",
			textAt("Figure "+strings.Repeat("x", 300), 400, 260, 500, 270, nil),
			1,
		},
		{
			"too short",
			textAt("ab", 120, 260, 280, 270, nil),
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.captionScore(tt.block, imageBBox, []model.TextBlock{tt.block})
			if got != tt.want {
				t.Errorf("captionScore(%q) = %v, want %v", tt.block.Text, got, tt.want)
			}
		})
	}
}

func TestCaptionScoreSmallerFontBonus(t *testing.T) {
	imageBBox := model.NewBoundingBox(100, 100, 300, 250)
	candidate := textAt("Diagram 3: Pipeline stages.", 120, 260, 280, 270,
		map[string]any{"size": 9.0})
	all := []model.TextBlock{
		candidate,
		textAt("Body paragraph.", 72, 300, 540, 312, map[string]any{"size": 12.0}),
		textAt("Another body paragraph.", 72, 320, 540, 332, map[string]any{"size": 12.0}),
	}

	e := NewChartExtractor()
	withBody := e.captionScore(candidate, imageBBox, all)
	alone := e.captionScore(candidate, imageBBox, []model.TextBlock{candidate})
	if withBody != alone+1 {
		t.Errorf("smaller-font bonus missing: with body %v, alone %v", withBody, alone)
	}
}

func TestFindCaptionTieKeepsFirst(t *testing.T) {
	imageBBox := model.NewBoundingBox(100, 100, 300, 250)
	blocks := []model.TextBlock{
		textAt("Photo A.", 150, 260, 250, 270, nil),
		textAt("Photo B.", 150, 275, 250, 285, nil),
	}

	e := NewChartExtractor()
	caption, _ := e.findCaption(imageBBox, blocks)
	if caption != "Photo A." {
		t.Errorf("caption = %q, want first candidate", caption)
	}
}

type fakeBytes struct {
	data []byte
	err  error
}

func (f fakeBytes) ImageBytes(xref int) ([]byte, error) { return f.data, f.err }

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	format, w, h, ok := Sniff(encodePNG(t, 3, 2))
	if !ok || format != "png" || w != 3 || h != 2 {
		t.Errorf("Sniff(png) = %q %dx%d ok=%v", format, w, h, ok)
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	format, w, h, ok = Sniff(buf.Bytes())
	if !ok || format != "bmp" || w != 4 || h != 4 {
		t.Errorf("Sniff(bmp) = %q %dx%d ok=%v", format, w, h, ok)
	}

	if _, _, _, ok := Sniff([]byte("not an image")); ok {
		t.Error("Sniff accepted junk bytes")
	}
}

func TestEnrichUpdatesFromStoredBytes(t *testing.T) {
	data := encodePNG(t, 3, 2)
	info := model.ImageInfo{ID: "page_1_img_0_7", XRef: 7, Format: "raw"}

	e := NewChartExtractor()
	e.Enrich(fakeBytes{data: data}, &info)
	if info.Format != "png" || info.Width != 3 || info.Height != 2 {
		t.Errorf("enriched = %+v", info)
	}
	if info.SizeBytes != len(data) {
		t.Errorf("SizeBytes = %d, want %d", info.SizeBytes, len(data))
	}
}

func TestEnrichLeavesInfoOnFailure(t *testing.T) {
	info := model.ImageInfo{ID: "page_1_img_0_7", XRef: 7, Format: "jpeg", Width: 640}

	e := NewChartExtractor()
	e.Enrich(fakeBytes{err: errors.New("missing object")}, &info)
	if info.Format != "jpeg" || info.Width != 640 {
		t.Errorf("info changed on failure: %+v", info)
	}
}

func TestImageData(t *testing.T) {
	e := NewChartExtractor()
	info := model.ImageInfo{ID: "page_1_img_0_5", XRef: 5}

	data, err := e.ImageData(fakeBytes{data: []byte("hello")}, info, false)
	if err != nil || string(data) != "hello" {
		t.Fatalf("ImageData = %q, %v", data, err)
	}

	data, err = e.ImageData(fakeBytes{data: []byte("hello")}, info, true)
	if err != nil || string(data) != "aGVsbG8=" {
		t.Fatalf("ImageData base64 = %q, %v", data, err)
	}

	if _, err := e.ImageData(fakeBytes{}, model.ImageInfo{ID: "x"}, false); err == nil {
		t.Error("expected error for missing xref")
	}
}
