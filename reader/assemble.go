package reader

import (
	"sort"

	"github.com/pdfstruct/pdfstruct/model"
)

// baselineTolerance is how far apart two span baselines can sit and
// still belong to the same text line, in points.
const baselineTolerance = 2.0

// assemblePage converts interpreter output in PDF coordinates into a
// RawPage: flips y to grow downward, groups spans into lines and lines
// into blocks.
func assemblePage(number int, width, height float64, rotation int,
	spans []RawSpan, rules []RuleLine, images []RawImage) *RawPage {

	page := &RawPage{
		Number:   number,
		Width:    width,
		Height:   height,
		Rotation: rotation,
	}

	flipped := make([]RawSpan, 0, len(spans))
	for _, s := range spans {
		s.BBox = flipBox(s.BBox, height)
		s.Origin.Y = height - s.Origin.Y
		flipped = append(flipped, s)
	}

	lines := groupLines(flipped)
	page.Blocks = groupBlocks(lines)

	for _, r := range rules {
		r.Y0 = height - r.Y0
		r.Y1 = height - r.Y1
		if r.Y0 > r.Y1 {
			r.Y0, r.Y1 = r.Y1, r.Y0
		}
		page.Rules = append(page.Rules, r)
	}

	for i, img := range images {
		img.BBox = flipBox(img.BBox, height)
		img.Index = i
		page.Images = append(page.Images, img)
	}

	return page
}

func flipBox(b model.BoundingBox, height float64) model.BoundingBox {
	return model.NewBoundingBox(b.X0, height-b.Y1, b.X1, height-b.Y0)
}

// groupLines buckets spans by baseline, then orders each line left to
// right.
func groupLines(spans []RawSpan) []RawLine {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]RawSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Origin.Y != sorted[j].Origin.Y {
			return sorted[i].Origin.Y < sorted[j].Origin.Y
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var lines []RawLine
	current := []RawSpan{sorted[0]}
	baseline := sorted[0].Origin.Y
	for _, s := range sorted[1:] {
		if s.Origin.Y-baseline > baselineTolerance {
			lines = append(lines, finishLine(current))
			current = nil
		}
		current = append(current, s)
		baseline = s.Origin.Y
	}
	lines = append(lines, finishLine(current))
	return lines
}

func finishLine(spans []RawSpan) RawLine {
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].BBox.X0 < spans[j].BBox.X0
	})
	line := RawLine{Spans: spans, Dir: model.Point{X: 1}}
	bbox := spans[0].BBox
	for _, s := range spans[1:] {
		bbox = bbox.Union(s.BBox)
	}
	line.BBox = bbox
	return line
}

// groupBlocks splits consecutive lines into blocks at vertical gaps
// larger than the typical line spacing.
func groupBlocks(lines []RawLine) []RawBlock {
	if len(lines) == 0 {
		return nil
	}
	var blocks []RawBlock
	current := []RawLine{lines[0]}
	for _, line := range lines[1:] {
		prev := current[len(current)-1]
		gap := line.BBox.Y0 - prev.BBox.Y1
		if gap > 0.8*lineSize(prev) {
			blocks = append(blocks, finishBlock(len(blocks), current))
			current = nil
		}
		current = append(current, line)
	}
	blocks = append(blocks, finishBlock(len(blocks), current))
	return blocks
}

func finishBlock(number int, lines []RawLine) RawBlock {
	block := RawBlock{Number: number, Type: model.BlockTypeText, Lines: lines}
	bbox := lines[0].BBox
	for _, l := range lines[1:] {
		bbox = bbox.Union(l.BBox)
	}
	block.BBox = bbox
	return block
}

// lineSize returns the dominant font size of a line, falling back to
// its bbox height.
func lineSize(l RawLine) float64 {
	max := 0.0
	for _, s := range l.Spans {
		if s.Size > max {
			max = s.Size
		}
	}
	if max == 0 {
		max = l.BBox.Height
	}
	return max
}
