package pages

import (
	"log/slog"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// Processor turns reader.RawPage values into model content blocks.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor returns a Processor logging through logger, or
// slog.Default when nil.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger}
}

// ContentBlocks converts the page's raw blocks into model blocks. Text
// blocks come first in layout order, image placements follow as image
// blocks with no lines. Spans with empty text are dropped.
func (p *Processor) ContentBlocks(page *reader.RawPage) []model.ContentBlock {
	var out []model.ContentBlock
	for _, rb := range page.Blocks {
		block := model.ContentBlock{
			Number:    len(out),
			BlockType: rb.Type,
			BBox:      rb.BBox,
		}
		for _, rl := range rb.Lines {
			line := model.TextLine{
				BBox:  rl.BBox,
				WMode: rl.WMode,
				Dir:   rl.Dir,
			}
			for _, rs := range rl.Spans {
				if rs.Text == "" {
					continue
				}
				line.Spans = append(line.Spans, model.TextSpan{
					Text:   rs.Text,
					BBox:   rs.BBox,
					Origin: rs.Origin,
					Font: model.FontInfo{
						Name:  rs.Font,
						Size:  rs.Size,
						Flags: rs.Flags,
						Color: rs.Color,
					},
				})
			}
			if len(line.Spans) > 0 {
				block.Lines = append(block.Lines, line)
			}
		}
		if block.BlockType == model.BlockTypeText && len(block.Lines) == 0 {
			continue
		}
		out = append(out, block)
	}
	for _, img := range page.Images {
		out = append(out, model.ContentBlock{
			Number:    len(out),
			BlockType: model.BlockTypeImage,
			BBox:      img.BBox,
		})
	}
	p.logger.Debug("page blocks assembled", "page", page.Number, "blocks", len(out))
	return out
}

// Spans flattens the page's text into spans in layout order.
func (p *Processor) Spans(page *reader.RawPage) []model.TextSpan {
	var out []model.TextSpan
	for _, b := range p.ContentBlocks(page) {
		for _, l := range b.Lines {
			out = append(out, l.Spans...)
		}
	}
	return out
}

// PlainText dumps the page text, one line per text line with blank
// lines between blocks.
func (p *Processor) PlainText(page *reader.RawPage) string {
	var parts []string
	for _, b := range page.TextBlocks() {
		var lines []string
		for _, l := range b.Lines {
			if t := l.Text(); t != "" {
				lines = append(lines, t)
			}
		}
		if len(lines) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Statistics summarizes the page layout.
type Statistics struct {
	BlockCount      int
	TextBlockCount  int
	ImageBlockCount int
	LineCount       int
	SpanCount       int
	FontUsage       map[string]int
	MinFontSize     float64
	MaxFontSize     float64
	AvgFontSize     float64
}

// Statistics computes layout counts and font usage for a page.
func (p *Processor) Statistics(page *reader.RawPage) Statistics {
	stats := Statistics{
		FontUsage: make(map[string]int),
	}
	sizeSum := 0.0
	for _, b := range page.Blocks {
		stats.BlockCount++
		if b.Type == model.BlockTypeText {
			stats.TextBlockCount++
		} else {
			stats.ImageBlockCount++
		}
		for _, l := range b.Lines {
			stats.LineCount++
			for _, s := range l.Spans {
				stats.SpanCount++
				stats.FontUsage[s.Font]++
				sizeSum += s.Size
				if stats.MinFontSize == 0 || s.Size < stats.MinFontSize {
					stats.MinFontSize = s.Size
				}
				if s.Size > stats.MaxFontSize {
					stats.MaxFontSize = s.Size
				}
			}
		}
	}
	stats.BlockCount += len(page.Images)
	stats.ImageBlockCount += len(page.Images)
	if stats.SpanCount > 0 {
		stats.AvgFontSize = sizeSum / float64(stats.SpanCount)
	}
	return stats
}
