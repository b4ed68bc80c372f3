package tables

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// RuledDetector builds table grids from drawn ruling lines. Rules are
// grouped into horizontal and vertical tracks; the cells between
// adjacent tracks are filled with the spans whose centers fall inside.
type RuledDetector struct {
	// AlignmentTolerance is the maximum distance between rules merged
	// into one track (points).
	AlignmentTolerance float64

	// MinLineLength filters out tick marks and underlines (points).
	MinLineLength float64

	// MinTracks is the minimum number of tracks per axis. Three tracks
	// bound two rows or columns.
	MinTracks int
}

// NewRuledDetector returns a detector with the default tolerances.
func NewRuledDetector() *RuledDetector {
	return &RuledDetector{
		AlignmentTolerance: 3.0,
		MinLineLength:      10.0,
		MinTracks:          3,
	}
}

// Extract returns at most one grid per page, spanning the full ruled
// region. Pages without enough rules yield no grids.
func (d *RuledDetector) Extract(ctx context.Context, page *reader.RawPage) ([]Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page == nil || len(page.Rules) == 0 {
		return nil, nil
	}

	var hPos, vPos []float64
	for _, r := range page.Rules {
		if lineLength(r) < d.MinLineLength {
			continue
		}
		if r.IsHorizontal() {
			hPos = append(hPos, (r.Y0+r.Y1)/2)
		} else {
			vPos = append(vPos, (r.X0+r.X1)/2)
		}
	}
	hTracks := clusterPositions(hPos, d.AlignmentTolerance)
	vTracks := clusterPositions(vPos, d.AlignmentTolerance)
	if len(hTracks) < d.MinTracks || len(vTracks) < d.MinTracks {
		return nil, nil
	}

	rows := len(hTracks) - 1
	cols := len(vTracks) - 1
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}

	occupied := 0
	for _, span := range pageSpans(page) {
		cx := (span.BBox.X0 + span.BBox.X1) / 2
		cy := (span.BBox.Y0 + span.BBox.Y1) / 2
		row := trackIndex(cy, hTracks)
		col := trackIndex(cx, vTracks)
		if row < 0 || col < 0 {
			continue
		}
		if cells[row][col] == "" {
			occupied++
			cells[row][col] = span.Text
		} else {
			cells[row][col] += " " + span.Text
		}
	}
	if occupied == 0 {
		return nil, nil
	}

	bbox := model.NewBoundingBox(vTracks[0], hTracks[0], vTracks[len(vTracks)-1], hTracks[len(hTracks)-1])
	return []Grid{{Cells: cells, BBox: bbox}}, nil
}

// UnruledDetector builds table grids from text alignment alone. Spans
// are clustered into vertically close regions; a region forms a table
// when its spans share repeated column start positions across rows.
type UnruledDetector struct {
	// ColumnTolerance is the clustering tolerance for span start
	// positions (points).
	ColumnTolerance float64

	// RowTolerance is the clustering tolerance for baselines (points).
	RowTolerance float64

	// MaxRowGap splits a page into separate candidate regions (points).
	MaxRowGap float64

	// MinRows and MinCols reject degenerate grids.
	MinRows int
	MinCols int
}

// NewUnruledDetector returns a detector with the default tolerances.
func NewUnruledDetector() *UnruledDetector {
	return &UnruledDetector{
		ColumnTolerance: 10.0,
		RowTolerance:    3.0,
		MaxRowGap:       50.0,
		MinRows:         2,
		MinCols:         2,
	}
}

// Extract returns one grid per candidate region with tabular alignment.
func (d *UnruledDetector) Extract(ctx context.Context, page *reader.RawPage) ([]Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}
	spans := pageSpans(page)
	if len(spans) == 0 {
		return nil, nil
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].BBox.Y0 != spans[j].BBox.Y0 {
			return spans[i].BBox.Y0 < spans[j].BBox.Y0
		}
		return spans[i].BBox.X0 < spans[j].BBox.X0
	})

	var grids []Grid
	region := []reader.RawSpan{spans[0]}
	for _, span := range spans[1:] {
		prev := region[len(region)-1]
		if span.BBox.Y0-prev.BBox.Y1 > d.MaxRowGap {
			if g, ok := d.gridFromRegion(region); ok {
				grids = append(grids, g)
			}
			region = region[:0]
		}
		region = append(region, span)
	}
	if g, ok := d.gridFromRegion(region); ok {
		grids = append(grids, g)
	}
	return grids, nil
}

// gridFromRegion tries to interpret one vertically contiguous span
// region as a table.
func (d *UnruledDetector) gridFromRegion(spans []reader.RawSpan) (Grid, bool) {
	if len(spans) < d.MinRows*d.MinCols {
		return Grid{}, false
	}

	var rowPos []float64
	for _, s := range spans {
		rowPos = append(rowPos, s.Origin.Y)
	}
	rowPos = clusterPositions(rowPos, d.RowTolerance)
	if len(rowPos) < d.MinRows {
		return Grid{}, false
	}

	// Column boundaries are start positions shared by more than one
	// span; a single ragged start is not a column.
	var xPos []float64
	for _, s := range spans {
		xPos = append(xPos, s.BBox.X0)
	}
	sort.Float64s(xPos)
	colPos := repeatedPositions(xPos, d.ColumnTolerance)
	if len(colPos) < d.MinCols {
		return Grid{}, false
	}

	cells := make([][]string, len(rowPos))
	for i := range cells {
		cells[i] = make([]string, len(colPos))
	}
	bbox := spans[0].BBox
	for _, s := range spans {
		bbox = bbox.Union(s.BBox)
		row := nearestIndex(s.Origin.Y, rowPos)
		col := 0
		for j := len(colPos) - 1; j >= 0; j-- {
			if s.BBox.X0 >= colPos[j]-d.ColumnTolerance {
				col = j
				break
			}
		}
		if cells[row][col] == "" {
			cells[row][col] = s.Text
		} else {
			cells[row][col] += " " + s.Text
		}
	}

	// A table needs cells filled beyond the first column.
	filled := 0
	for _, row := range cells {
		for j := 1; j < len(row); j++ {
			if strings.TrimSpace(row[j]) != "" {
				filled++
			}
		}
	}
	if filled < d.MinRows {
		return Grid{}, false
	}
	return Grid{Cells: cells, BBox: bbox}, true
}

func lineLength(r reader.RuleLine) float64 {
	return math.Hypot(r.X1-r.X0, r.Y1-r.Y0)
}

// pageSpans flattens all text block spans on the page.
func pageSpans(page *reader.RawPage) []reader.RawSpan {
	var out []reader.RawSpan
	for _, b := range page.TextBlocks() {
		for _, l := range b.Lines {
			out = append(out, l.Spans...)
		}
	}
	return out
}

// clusterPositions merges nearby values into track positions. Values
// within tolerance of the running cluster center are averaged in.
func clusterPositions(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	clustered := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		last := len(clustered) - 1
		if v-clustered[last] > tolerance {
			clustered = append(clustered, v)
		} else {
			clustered[last] = (clustered[last] + v) / 2
		}
	}
	return clustered
}

// repeatedPositions clusters sorted values and keeps only cluster
// centers backed by more than one value.
func repeatedPositions(sorted []float64, tolerance float64) []float64 {
	if len(sorted) == 0 {
		return nil
	}
	var out []float64
	center, count := sorted[0], 1
	for _, v := range sorted[1:] {
		if v-center > tolerance {
			if count > 1 {
				out = append(out, center)
			}
			center, count = v, 1
		} else {
			center = (center + v) / 2
			count++
		}
	}
	if count > 1 {
		out = append(out, center)
	}
	return out
}

// trackIndex returns the index of the cell interval containing v, or
// -1 when v lies outside the tracks.
func trackIndex(v float64, tracks []float64) int {
	for i := 0; i < len(tracks)-1; i++ {
		if v >= tracks[i] && v <= tracks[i+1] {
			return i
		}
	}
	return -1
}

// nearestIndex returns the index of the closest position.
func nearestIndex(v float64, positions []float64) int {
	best := 0
	bestDist := math.Abs(v - positions[0])
	for i, p := range positions[1:] {
		if d := math.Abs(v - p); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}
