package images

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// Config holds settings for image and caption extraction.
type Config struct {
	// SearchMargin is how far below an image's bottom edge caption
	// candidates are collected, in points.
	SearchMargin float64

	// MaxCaptionLength is the longest candidate text, in runes.
	MaxCaptionLength int

	// Debug enables per-page debug logging.
	Debug bool

	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns the default image extraction settings.
func DefaultConfig() Config {
	return Config{
		SearchMargin:     50,
		MaxCaptionLength: 500,
	}
}

// ChartExtractor detects images and charts on pages.
type ChartExtractor struct {
	config Config
	logger *slog.Logger
}

// NewChartExtractor creates an extractor with default settings.
func NewChartExtractor() *ChartExtractor {
	return NewChartExtractorWithConfig(DefaultConfig())
}

// NewChartExtractorWithConfig creates an extractor with custom settings.
func NewChartExtractorWithConfig(config Config) *ChartExtractor {
	if config.SearchMargin <= 0 {
		config.SearchMargin = 50
	}
	if config.MaxCaptionLength <= 0 {
		config.MaxCaptionLength = 500
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartExtractor{config: config, logger: logger}
}

// ByteSource supplies stored image bytes by object number. Implemented
// by reader.Document.
type ByteSource interface {
	ImageBytes(xref int) ([]byte, error)
}

// ExtractPage builds ImageInfo records for every image placed on the
// page. When text blocks are supplied, each image gets the
// best-scoring caption candidate from the band just below it.
func (e *ChartExtractor) ExtractPage(page *reader.RawPage, blocks []model.TextBlock) []model.ImageInfo {
	if page == nil {
		return nil
	}
	var out []model.ImageInfo
	for _, raw := range page.Images {
		info := model.ImageInfo{
			ID:        model.ImageID(page.Number, raw.Index, raw.XRef),
			Page:      page.Number,
			Index:     raw.Index,
			XRef:      raw.XRef,
			BBox:      raw.BBox,
			Width:     raw.Width,
			Height:    raw.Height,
			Format:    raw.Format,
			SizeBytes: raw.SizeBytes,
			Metadata: map[string]any{
				"xref":          raw.XRef,
				"page_number":   page.Number,
				"index_on_page": raw.Index,
			},
		}
		if len(blocks) > 0 {
			if caption, score := e.findCaption(info.BBox, blocks); caption != "" {
				info.Caption = caption
				info.CaptionConfidence = captionConfidence(score)
			}
		}
		out = append(out, info)
	}
	if e.config.Debug {
		e.logger.Debug("images extracted", "page", page.Number, "count", len(out))
	}
	return out
}

// findCaption scores text blocks whose vertical center falls within
// SearchMargin below the image and returns the best positive scorer.
// Ties keep the earlier candidate.
func (e *ChartExtractor) findCaption(imageBBox model.BoundingBox, blocks []model.TextBlock) (string, float64) {
	bandTop := imageBBox.Y1
	bandBottom := imageBBox.Y1 + e.config.SearchMargin

	best := ""
	bestScore := 0.0
	for _, block := range blocks {
		text := strings.TrimSpace(block.Text)
		if text == "" || utf8.RuneCountInString(text) > e.config.MaxCaptionLength {
			continue
		}
		center := (block.BBox.Y0 + block.BBox.Y1) / 2
		if center < bandTop || center > bandBottom {
			continue
		}
		if score := e.captionScore(block, imageBBox, blocks); score > bestScore {
			best = text
			bestScore = score
		}
	}
	return best, bestScore
}

var captionPrefixes = []string{
	"figure", "fig.", "chart", "graph", "image", "table", "tab.",
	"diagram", "illustration", "photo", "picture",
}

var nonCaptionMarkers = []string{
	"continued on next page", "see page", "http://", "www.",
	"email", "@", "copyright", "©",
}

// captionScore rates how caption-like a text block is relative to an
// image. Zero means not a caption.
func (e *ChartExtractor) captionScore(block model.TextBlock, imageBBox model.BoundingBox, all []model.TextBlock) float64 {
	text := strings.TrimSpace(block.Text)
	n := utf8.RuneCountInString(text)
	if n < 3 {
		return 0
	}

	score := 0.0
	lower := strings.ToLower(text)

	for _, prefix := range captionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			score += 2
			break
		}
	}
	if digitNearStart(text) {
		score++
	}
	if strings.HasSuffix(text, ".") {
		score += 0.5
	}
	switch {
	case n >= 10 && n <= 200:
		score++
	case n >= 5 && n < 10:
		score += 0.5
	}

	if block.FontInfo != nil {
		if italic, _ := block.FontInfo["italic"].(bool); italic {
			score += 1.5
		}
		if size := fontSize(block.FontInfo); size > 0 {
			if avg := averageFontSize(all); avg > 0 && size < avg*0.9 {
				score++
			}
		}
	}

	textCenter := (block.BBox.X0 + block.BBox.X1) / 2
	imageCenter := (imageBBox.X0 + imageBBox.X1) / 2
	width := imageBBox.Width
	if width <= 0 {
		width = 1
	}
	if math.Abs(textCenter-imageCenter) < width*0.25 {
		score++
	}

	if n > 300 {
		score--
	}
	for _, marker := range nonCaptionMarkers {
		if strings.Contains(lower, marker) {
			score -= 2
			break
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// captionConfidence maps a raw score onto [0,1]. Eight is the largest
// score a candidate can accumulate.
func captionConfidence(score float64) float64 {
	return math.Min(1, score/8)
}

// digitNearStart reports whether any of the first 20 runes is a digit,
// catching numbered captions like "Figure 3:".
func digitNearStart(text string) bool {
	i := 0
	for _, r := range text {
		if i >= 20 {
			break
		}
		if unicode.IsDigit(r) {
			return true
		}
		i++
	}
	return false
}

func fontSize(info map[string]any) float64 {
	switch v := info["size"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func averageFontSize(blocks []model.TextBlock) float64 {
	sum, count := 0.0, 0
	for _, b := range blocks {
		if b.FontInfo == nil {
			continue
		}
		if size := fontSize(b.FontInfo); size > 0 {
			sum += size
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// ImageData fetches the stored bytes for an extracted image, optionally
// base64 encoded for embedding in JSON output.
func (e *ChartExtractor) ImageData(src ByteSource, info model.ImageInfo, asBase64 bool) ([]byte, error) {
	if info.XRef <= 0 {
		return nil, fmt.Errorf("image %s: no object reference", info.ID)
	}
	data, err := src.ImageBytes(info.XRef)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", info.ID, err)
	}
	if asBase64 {
		enc := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(enc, data)
		return enc, nil
	}
	return data, nil
}

// Enrich re-checks an image's declared format and dimensions against
// its stored bytes. Fetch or sniff failures leave info unchanged.
func (e *ChartExtractor) Enrich(src ByteSource, info *model.ImageInfo) {
	if info == nil || info.XRef <= 0 {
		return
	}
	data, err := src.ImageBytes(info.XRef)
	if err != nil || len(data) == 0 {
		if err != nil && e.config.Debug {
			e.logger.Debug("image bytes unavailable", "id", info.ID, "error", err)
		}
		return
	}
	info.SizeBytes = len(data)
	format, width, height, ok := Sniff(data)
	if !ok {
		return
	}
	info.Format = format
	if width > 0 {
		info.Width = width
	}
	if height > 0 {
		info.Height = height
	}
}
