package tables

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyRe = regexp.MustCompile(`[$€£¥₹]`)
	numberRe   = regexp.MustCompile(`^[-+]?(\d{1,3}(,\d{3})*|\d+)(\.\d+)?$`)
	percentRe  = regexp.MustCompile(`^[-+]?\d+(\.\d+)?%$`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Cell data types in detection priority order.
const (
	CellEmpty      = "empty"
	CellPercentage = "percentage"
	CellCurrency   = "currency"
	CellInteger    = "integer"
	CellFloat      = "float"
	CellText       = "text"
)

// CellValue is the result of data type detection on one cell.
type CellValue struct {
	Type      string
	Number    float64
	Currency  string
	Raw       string
	Formatted string
}

// Normalizer converts backend output into consistent cell text and
// analyzes table structure for quality scoring.
type Normalizer struct {
	StripWhitespace  bool
	NormalizeSpacing bool
}

// NewNormalizer returns a normalizer with all cleanups enabled.
func NewNormalizer() *Normalizer {
	return &Normalizer{StripWhitespace: true, NormalizeSpacing: true}
}

// Normalize cleans every cell of the table, returning a fresh grid.
func (n *Normalizer) Normalize(table [][]string) [][]string {
	out := make([][]string, len(table))
	for i, row := range table {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = n.CleanCell(cell)
		}
	}
	return out
}

// NormalizeBatch cleans multiple tables, dropping empty and single-row
// results.
func (n *Normalizer) NormalizeBatch(tables [][][]string) [][][]string {
	var out [][][]string
	for _, t := range tables {
		cleaned := n.Normalize(t)
		if len(cleaned) > 1 {
			out = append(out, cleaned)
		}
	}
	return out
}

// CleanCell normalizes one cell: placeholder null markers become empty,
// whitespace is trimmed and collapsed, newlines become spaces.
func (n *Normalizer) CleanCell(content string) string {
	switch strings.ToLower(content) {
	case "", "nan", "none", "null":
		return ""
	}
	if n.StripWhitespace {
		content = strings.TrimSpace(content)
	}
	if n.NormalizeSpacing {
		content = spacesRe.ReplaceAllString(content, " ")
	}
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")
	return content
}

// DetectDataType classifies cell content, checking percentage, then
// currency, then number, falling back to text.
func (n *Normalizer) DetectDataType(content string) CellValue {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return CellValue{Type: CellEmpty, Raw: content}
	}

	if percentRe.MatchString(trimmed) {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "%"), 64); err == nil {
			return CellValue{
				Type:      CellPercentage,
				Number:    v,
				Raw:       trimmed,
				Formatted: fmt.Sprintf("%g%%", v),
			}
		}
	}

	if symbol := currencyRe.FindString(trimmed); symbol != "" {
		numeric := currencyRe.ReplaceAllString(trimmed, "")
		numeric = strings.TrimSpace(strings.ReplaceAll(numeric, ",", ""))
		if v, err := strconv.ParseFloat(numeric, 64); err == nil {
			return CellValue{
				Type:      CellCurrency,
				Number:    v,
				Currency:  symbol,
				Raw:       trimmed,
				Formatted: fmt.Sprintf("%s%.2f", symbol, v),
			}
		}
	}

	clean := strings.ReplaceAll(trimmed, ",", "")
	if numberRe.MatchString(clean) {
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			kind := CellInteger
			if strings.Contains(clean, ".") {
				kind = CellFloat
			}
			return CellValue{
				Type:      kind,
				Number:    v,
				Raw:       trimmed,
				Formatted: strconv.FormatFloat(v, 'f', -1, 64),
			}
		}
	}

	return CellValue{Type: CellText, Raw: trimmed, Formatted: trimmed}
}

// StructureAnalysis describes the shape and content of a table.
type StructureAnalysis struct {
	Valid             bool
	Reason            string
	NumRows           int
	NumCols           int
	MinCols           int
	MaxCols           int
	ColumnConsistency float64
	Header            []string
	ColumnTypes       []string
	ContentDensity    float64
	HasNumbers        bool
	EstimatedQuality  float64
}

// AnalyzeStructure analyzes a normalized table: column consistency,
// per-column dominant data types, content density and an estimated
// quality score.
func (n *Normalizer) AnalyzeStructure(table [][]string) StructureAnalysis {
	if len(table) == 0 {
		return StructureAnalysis{Reason: "empty table"}
	}
	if len(table) < 2 {
		return StructureAnalysis{Reason: "less than 2 rows"}
	}

	minCols, maxCols := len(table[0]), len(table[0])
	for _, row := range table {
		if len(row) < minCols {
			minCols = len(row)
		}
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	dataRows := table[1:]
	columnTypes := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		columnTypes[col] = n.dominantType(dataRows, col)
	}

	total, nonEmpty := 0, 0
	for _, row := range table {
		total += len(row)
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
			}
		}
	}
	density := 0.0
	if total > 0 {
		density = float64(nonEmpty) / float64(total)
	}
	consistency := 0.0
	if maxCols > 0 {
		consistency = float64(minCols) / float64(maxCols)
	}

	hasNumbers := false
	for _, t := range columnTypes {
		switch t {
		case CellInteger, CellFloat, CellCurrency, CellPercentage:
			hasNumbers = true
		}
	}

	return StructureAnalysis{
		Valid:             true,
		NumRows:           len(table),
		NumCols:           maxCols,
		MinCols:           minCols,
		MaxCols:           maxCols,
		ColumnConsistency: consistency,
		Header:            table[0],
		ColumnTypes:       columnTypes,
		ContentDensity:    density,
		HasNumbers:        hasNumbers,
		EstimatedQuality:  estimateQuality(len(table), maxCols, density, consistency),
	}
}

// dominantType samples up to 10 non-empty values in a column and picks
// the most common detected type, first seen winning ties.
func (n *Normalizer) dominantType(rows [][]string, col int) string {
	var samples []string
	for _, row := range rows {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			samples = append(samples, row[col])
			if len(samples) == 10 {
				break
			}
		}
	}
	if len(samples) == 0 {
		return CellEmpty
	}

	counts := make(map[string]int)
	var order []string
	for _, v := range samples {
		t := n.DetectDataType(v).Type
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}
	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// estimateQuality scores a table in [0,1]: 30% structure (size up to
// 20 cells of data), 70% content (density and column consistency).
func estimateQuality(numRows, numCols int, density, consistency float64) float64 {
	structure := float64(numRows-1) * float64(numCols) / 20
	if structure > 1 {
		structure = 1
	}
	content := density*0.8 + consistency*0.2
	quality := structure*0.3 + content*0.7
	if quality < 0 {
		return 0
	}
	if quality > 1 {
		return 1
	}
	return quality
}
