package classify

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
)

// Config holds tunable parameters for content classification.
type Config struct {
	// MinHeaderRatio is the smallest size ratio over baseline that can
	// make a span a header (with supporting evidence).
	MinHeaderRatio float64

	// ModerateHeaderRatio marks headers on size alone once other
	// primary criteria are met.
	ModerateHeaderRatio float64

	// StrongHeaderRatio marks a span as a header unconditionally.
	StrongHeaderRatio float64

	// MaxLineSpacingFactor limits the vertical gap between grouped
	// paragraph spans as a multiple of the average font size.
	MaxLineSpacingFactor float64

	// Debug captures baseline distribution data during classification.
	Debug bool

	// Logger receives classification diagnostics. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns the standard classification thresholds.
func DefaultConfig() Config {
	return Config{
		MinHeaderRatio:       1.2,
		ModerateHeaderRatio:  1.4,
		StrongHeaderRatio:    1.5,
		MaxLineSpacingFactor: 1.5,
	}
}

// BaselineStyle is the modal body-text style of a page.
type BaselineStyle struct {
	Size   float64
	Font   string
	Bold   bool
	Italic bool
}

// Classifier assigns content types to text spans page by page.
type Classifier struct {
	config   Config
	baseline *BaselineStyle
	debug    map[string]any
}

// New returns a Classifier with default configuration.
func New() *Classifier {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns a Classifier with custom configuration.
func NewWithConfig(config Config) *Classifier {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Classifier{config: config}
}

// spanInfo tracks a span through the two classification passes.
type spanInfo struct {
	span        model.TextSpan
	blockNumber int
	contentType model.ContentType
	shouldGroup bool
}

// ClassifyPage classifies all text on a page into typed blocks. The
// page's modal font style becomes the baseline; spans larger or bolder
// than it are header candidates, list markers win over header rules,
// and remaining spans group into paragraphs. An empty page yields an
// empty result.
func (c *Classifier) ClassifyPage(blocks []model.ContentBlock) []model.TextBlock {
	c.establishBaseline(blocks)

	var spans []spanInfo
	for _, block := range blocks {
		if !block.IsTextBlock() {
			continue
		}
		for _, line := range block.Lines {
			for _, span := range line.Spans {
				if strings.TrimSpace(span.Text) == "" {
					continue
				}
				spans = append(spans, spanInfo{
					span:        span,
					blockNumber: block.Number,
				})
			}
		}
	}

	// Reading order: top to bottom, then left to right.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].span.BBox.Y0 != spans[j].span.BBox.Y0 {
			return spans[i].span.BBox.Y0 < spans[j].span.BBox.Y0
		}
		return spans[i].span.BBox.X0 < spans[j].span.BBox.X0
	})

	// First pass: headers and list items break paragraph flow.
	for i := range spans {
		switch {
		case isListItem(spans[i].span.Text):
			spans[i].contentType = model.ContentTypeList
			spans[i].shouldGroup = false
		case c.isHeader(spans[i].span):
			spans[i].contentType = model.ContentTypeHeader
			spans[i].shouldGroup = false
		default:
			spans[i].contentType = model.ContentTypeParagraph
			spans[i].shouldGroup = true
		}
	}

	// Second pass: merge adjacent compatible paragraph spans.
	var out []model.TextBlock
	for _, group := range c.groupParagraphs(spans) {
		if tb, ok := c.blockFromGroup(group); ok {
			out = append(out, tb)
		}
	}
	return out
}

// Baseline returns the modal style established by the last
// ClassifyPage call, or nil before the first page.
func (c *Classifier) Baseline() *BaselineStyle {
	if c.baseline == nil {
		return nil
	}
	b := *c.baseline
	return &b
}

// DebugInfo returns distribution data captured when Debug is set.
func (c *Classifier) DebugInfo() map[string]any {
	if !c.config.Debug || c.debug == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(c.debug))
	for k, v := range c.debug {
		out[k] = v
	}
	return out
}

// establishBaseline finds the modal font size, family and style across
// the page. A page with no text falls back to 12pt "Unknown".
func (c *Classifier) establishBaseline(blocks []model.ContentBlock) {
	var sizes []float64
	var fonts []string
	var bolds, italics []bool

	for _, block := range blocks {
		if !block.IsTextBlock() {
			continue
		}
		for _, line := range block.Lines {
			for _, span := range line.Spans {
				if strings.TrimSpace(span.Text) == "" {
					continue
				}
				sizes = append(sizes, span.Font.Size)
				fonts = append(fonts, span.Font.Name)
				bolds = append(bolds, span.Font.IsBold())
				italics = append(italics, span.Font.IsItalic())
			}
		}
	}

	if len(sizes) == 0 {
		c.baseline = &BaselineStyle{Size: 12.0, Font: "Unknown"}
		return
	}

	c.baseline = &BaselineStyle{
		Size:   modalFloat(sizes),
		Font:   modalString(fonts),
		Bold:   modalBool(bolds),
		Italic: modalBool(italics),
	}

	if c.config.Debug {
		sizeDist := make(map[float64]int)
		for _, s := range sizes {
			sizeDist[s]++
		}
		fontDist := make(map[string]int)
		for _, f := range fonts {
			fontDist[f]++
		}
		c.debug = map[string]any{
			"total_spans":       len(sizes),
			"size_distribution": sizeDist,
			"font_distribution": fontDist,
			"baseline_style":    *c.baseline,
		}
	}
}

// isHeader applies the header rule ladder against the baseline.
func (c *Classifier) isHeader(span model.TextSpan) bool {
	if c.baseline == nil {
		return false
	}
	ratio := c.sizeRatio(span.Font)
	boldDiverges := span.Font.IsBold() && !c.baseline.Bold

	if ratio >= c.config.StrongHeaderRatio {
		return true
	}
	if ratio >= c.config.MinHeaderRatio || boldDiverges {
		text := strings.TrimSpace(span.Text)
		short := len(strings.Fields(text)) <= 3
		caps := isAllCaps(text)

		if short || caps || boldDiverges {
			return true
		}
		if ratio >= c.config.MinHeaderRatio && ratio < c.config.ModerateHeaderRatio {
			return boldDiverges || caps
		}
		if ratio >= c.config.ModerateHeaderRatio {
			return true
		}
	}
	return false
}

// headerLevel maps a header span's size ratio onto a level 1-5. Level 5
// covers headers detected by weight rather than size.
func (c *Classifier) headerLevel(span model.TextSpan) int {
	if c.baseline == nil {
		return 1
	}
	ratio := c.sizeRatio(span.Font)
	switch {
	case ratio >= 2.0:
		return 1
	case ratio >= 1.7:
		return 2
	case ratio >= 1.4:
		return 3
	case ratio >= 1.2:
		return 4
	default:
		return 5
	}
}

func (c *Classifier) sizeRatio(font model.FontInfo) float64 {
	if c.baseline == nil || c.baseline.Size <= 0 {
		return 1.0
	}
	return font.Size / c.baseline.Size
}

// compareToBaseline builds the baseline_comparison metadata entry.
func (c *Classifier) compareToBaseline(font model.FontInfo) map[string]any {
	if c.baseline == nil {
		return map[string]any{}
	}
	ratio := c.sizeRatio(font)
	return map[string]any{
		"size_ratio":            ratio,
		"is_larger":             font.Size > c.baseline.Size,
		"is_smaller":            font.Size < c.baseline.Size,
		"font_matches":          font.Name == c.baseline.Font,
		"bold_differs":          font.IsBold() != c.baseline.Bold,
		"italic_differs":        font.IsItalic() != c.baseline.Italic,
		"significantly_larger":  ratio >= 1.2,
		"significantly_smaller": ratio <= 0.8,
	}
}

// groupParagraphs collects runs of compatible paragraph spans. Headers
// and list items always form single-span groups.
func (c *Classifier) groupParagraphs(spans []spanInfo) [][]spanInfo {
	var groups [][]spanInfo
	var current []spanInfo

	for _, si := range spans {
		if !si.shouldGroup {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			groups = append(groups, []spanInfo{si})
			continue
		}
		if len(current) > 0 && c.shouldGroup(si, current[len(current)-1]) {
			current = append(current, si)
			continue
		}
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = []spanInfo{si}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// shouldGroup decides whether a paragraph span continues the group
// ended by prev: close vertically, similar font, aligned left margin.
func (c *Classifier) shouldGroup(cur, prev spanInfo) bool {
	gap := prev.span.BBox.Y1 - cur.span.BBox.Y0
	if gap < 0 {
		gap = -gap
	}
	avgSize := (cur.span.Font.Size + prev.span.Font.Size) / 2
	if gap > avgSize*c.config.MaxLineSpacingFactor {
		return false
	}
	if !fontsSimilar(cur.span.Font, prev.span.Font) {
		return false
	}
	marginDiff := cur.span.BBox.X0 - prev.span.BBox.X0
	if marginDiff < 0 {
		marginDiff = -marginDiff
	}
	return marginDiff <= avgSize*0.5
}

// fontsSimilar reports whether two fonts can share a paragraph: same
// family, size within 10%, same weight and slant.
func fontsSimilar(f1, f2 model.FontInfo) bool {
	if f1.Name != f2.Name {
		return false
	}
	ratio := 1.0
	if f2.Size > 0 {
		ratio = f1.Size / f2.Size
	}
	if ratio < 0.9 || ratio > 1.1 {
		return false
	}
	return f1.IsBold() == f2.IsBold() && f1.IsItalic() == f2.IsItalic()
}

// blockFromGroup builds the final TextBlock for one group.
func (c *Classifier) blockFromGroup(group []spanInfo) (model.TextBlock, bool) {
	if len(group) == 0 {
		return model.TextBlock{}, false
	}
	if len(group) == 1 {
		return c.blockFromSpan(group[0])
	}

	first := group[0]
	texts := make([]string, 0, len(group))
	bbox := first.span.BBox
	for _, si := range group {
		texts = append(texts, strings.TrimSpace(si.span.Text))
		bbox = bbox.Union(si.span.BBox)
	}

	return model.TextBlock{
		Text:       strings.Join(texts, " "),
		Type:       first.contentType,
		BBox:       bbox,
		FontInfo:   first.span.Font.AsMap(),
		Confidence: 1.0,
		Metadata: map[string]any{
			"block_number":        first.blockNumber,
			"baseline_comparison": c.compareToBaseline(first.span.Font),
			"span_count":          len(group),
			"is_grouped":          true,
		},
	}, true
}

func (c *Classifier) blockFromSpan(si spanInfo) (model.TextBlock, bool) {
	text := strings.TrimSpace(si.span.Text)
	if text == "" {
		return model.TextBlock{}, false
	}
	metadata := map[string]any{
		"block_number":        si.blockNumber,
		"baseline_comparison": c.compareToBaseline(si.span.Font),
	}
	switch si.contentType {
	case model.ContentTypeHeader:
		metadata["header_level"] = c.headerLevel(si.span)
	case model.ContentTypeList:
		metadata["list_marker_type"] = string(listMarkerType(text))
	}
	return model.TextBlock{
		Text:       text,
		Type:       si.contentType,
		BBox:       si.span.BBox,
		FontInfo:   si.span.Font.AsMap(),
		Confidence: 1.0,
		Metadata:   metadata,
	}, true
}

// isAllCaps reports whether text has cased letters and none of them is
// lowercase.
func isAllCaps(text string) bool {
	return text != "" &&
		text == strings.ToUpper(text) &&
		text != strings.ToLower(text)
}

// modalFloat returns the most frequent value, earliest-seen winning
// ties.
func modalFloat(values []float64) float64 {
	counts := make(map[float64]int)
	var order []float64
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

func modalString(values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

func modalBool(values []bool) bool {
	counts := make(map[bool]int)
	var order []bool
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
