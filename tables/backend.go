package tables

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// Grid is one extracted table as raw rows of cell text. Row 0 is
// treated as the header row downstream.
type Grid struct {
	Cells [][]string
	BBox  model.BoundingBox
}

// ExtractFunc pulls candidate table grids from one raw page.
type ExtractFunc func(ctx context.Context, page *reader.RawPage) ([]Grid, error)

// Backend pairs an extraction function with the validation contract of
// the engine it models. Each wrapper owns its name and its notion of an
// acceptable table.
type Backend struct {
	name     string
	extract  ExtractFunc
	validate func([][]string) bool
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return b.name }

// Extract runs the backend and keeps only grids that pass its
// validation contract.
func (b *Backend) Extract(ctx context.Context, page *reader.RawPage) ([]Grid, error) {
	grids, err := b.extract(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	var valid []Grid
	for _, g := range grids {
		if b.validate(g.Cells) {
			valid = append(valid, g)
		}
	}
	return valid, nil
}

// Validate reports whether a table meets the backend's contract.
func (b *Backend) Validate(table [][]string) bool { return b.validate(table) }

// NewPlumberBackend wraps fn with the ragged-tolerant contract: at
// least 2 columns, column counts within 50% of the widest row, and
// some non-empty content.
func NewPlumberBackend(fn ExtractFunc) *Backend {
	return &Backend{name: "plumber", extract: fn, validate: validatePlumber}
}

// NewLatticeBackend wraps fn with the strict contract used for ruled
// layouts: near-uniform column counts and denser content.
func NewLatticeBackend(fn ExtractFunc) *Backend {
	return &Backend{name: "camelot-lattice", extract: fn, validate: validateStrict}
}

// NewStreamBackend wraps fn with the strict contract used for
// whitespace-separated layouts.
func NewStreamBackend(fn ExtractFunc) *Backend {
	return &Backend{name: "camelot-stream", extract: fn, validate: validateStrict}
}

// NewTabulaBackend wraps fn with the most lenient contract, intended
// as the last resort in a chain.
func NewTabulaBackend(fn ExtractFunc) *Backend {
	return &Backend{name: "tabula", extract: fn, validate: validateLenient}
}

// tableShape computes the shared shape measures used by the validation
// contracts. ok is false when the table has fewer than 2 rows or its
// first row fewer than 2 columns.
func tableShape(table [][]string) (minCols, maxCols int, density float64, ok bool) {
	if len(table) < 2 || len(table[0]) < 2 {
		return 0, 0, 0, false
	}
	minCols, maxCols = len(table[0]), len(table[0])
	total, nonEmpty := 0, 0
	for _, row := range table {
		if len(row) < minCols {
			minCols = len(row)
		}
		if len(row) > maxCols {
			maxCols = len(row)
		}
		total += len(row)
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
			}
		}
	}
	if total == 0 {
		return minCols, maxCols, 0, false
	}
	return minCols, maxCols, float64(nonEmpty) / float64(total), true
}

func validatePlumber(table [][]string) bool {
	minCols, maxCols, density, ok := tableShape(table)
	if !ok {
		return false
	}
	if float64(minCols) < float64(maxCols)*0.5 {
		return false
	}
	return density >= 0.1
}

func validateStrict(table [][]string) bool {
	_, _, density, ok := tableShape(table)
	if !ok {
		return false
	}
	distinct := make(map[int]struct{})
	for _, row := range table {
		distinct[len(row)] = struct{}{}
	}
	if len(distinct) > 2 {
		return false
	}
	return density >= 0.2
}

func validateLenient(table [][]string) bool {
	_, maxCols, density, ok := tableShape(table)
	if !ok {
		return false
	}
	acceptable := 0
	for _, row := range table {
		if float64(len(row)) >= float64(maxCols)*0.3 {
			acceptable++
		}
	}
	if float64(acceptable) < float64(len(table))*0.5 {
		return false
	}
	return density >= 0.05
}
