package tables

import (
	"math"
	"reflect"
	"testing"
)

func TestCleanCell(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"NaN", ""},
		{"none", ""},
		{"NULL", ""},
		{"", ""},
		{"line\nbreak", "line break"},
		{"tab\tseparated", "tab separated"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := n.CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectDataType(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		in       string
		wantType string
		wantNum  float64
	}{
		{"42", CellInteger, 42},
		{"-7", CellInteger, -7},
		{"1,234.5", CellFloat, 1234.5},
		{"3.5%", CellPercentage, 3.5},
		{"$1,200", CellCurrency, 1200},
		{"€99.95", CellCurrency, 99.95},
		{"hello", CellText, 0},
		{"  ", CellEmpty, 0},
		{"12ab", CellText, 0},
	}
	for _, tt := range tests {
		got := n.DetectDataType(tt.in)
		if got.Type != tt.wantType {
			t.Errorf("DetectDataType(%q).Type = %q, want %q", tt.in, got.Type, tt.wantType)
			continue
		}
		if math.Abs(got.Number-tt.wantNum) > 1e-9 {
			t.Errorf("DetectDataType(%q).Number = %v, want %v", tt.in, got.Number, tt.wantNum)
		}
	}
	if got := n.DetectDataType("$1,200"); got.Currency != "$" {
		t.Errorf("currency symbol = %q, want $", got.Currency)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	n := NewNormalizer()
	table := [][]string{
		{"Name", "Qty", "Price"},
		{"Widget", "5", "$1.50"},
		{"Gadget", "2", "$7.00"},
	}
	if got := n.Normalize(table); !reflect.DeepEqual(got, table) {
		t.Errorf("clean table changed by normalization: %v", got)
	}
}

func TestNormalizeBatchDropsDegenerate(t *testing.T) {
	n := NewNormalizer()
	batch := [][][]string{
		{{"only one row"}},
		{},
		{{"A", "B"}, {"1", "2"}},
	}
	got := n.NormalizeBatch(batch)
	if len(got) != 1 || got[0][0][0] != "A" {
		t.Errorf("NormalizeBatch kept %d tables, want 1", len(got))
	}
}

func TestAnalyzeStructure(t *testing.T) {
	n := NewNormalizer()
	analysis := n.AnalyzeStructure([][]string{
		{"Name", "Qty", "Price"},
		{"Widget", "5", "$1.50"},
		{"Gadget", "2", "$7.00"},
	})
	if !analysis.Valid {
		t.Fatalf("analysis invalid: %s", analysis.Reason)
	}
	if analysis.NumRows != 3 || analysis.NumCols != 3 {
		t.Errorf("shape = %dx%d, want 3x3", analysis.NumRows, analysis.NumCols)
	}
	if analysis.ColumnConsistency != 1.0 {
		t.Errorf("consistency = %v, want 1.0", analysis.ColumnConsistency)
	}
	if !analysis.HasNumbers {
		t.Error("HasNumbers = false, table has numeric columns")
	}
	wantTypes := []string{CellText, CellInteger, CellCurrency}
	if !reflect.DeepEqual(analysis.ColumnTypes, wantTypes) {
		t.Errorf("column types = %v, want %v", analysis.ColumnTypes, wantTypes)
	}
	// structure (2*3/20=0.3)*0.3 + content (0.8+0.2)*0.7
	if math.Abs(analysis.EstimatedQuality-0.79) > 1e-9 {
		t.Errorf("quality = %v, want 0.79", analysis.EstimatedQuality)
	}
}

func TestAnalyzeStructureRejectsDegenerate(t *testing.T) {
	n := NewNormalizer()
	if a := n.AnalyzeStructure(nil); a.Valid || a.Reason != "empty table" {
		t.Errorf("empty table analysis = %+v", a)
	}
	if a := n.AnalyzeStructure([][]string{{"just", "header"}}); a.Valid || a.Reason != "less than 2 rows" {
		t.Errorf("single row analysis = %+v", a)
	}
}

func TestDominantTypeTieBreak(t *testing.T) {
	n := NewNormalizer()
	analysis := n.AnalyzeStructure([][]string{
		{"Col"},
		{"1"},
		{"abc"},
	})
	if analysis.ColumnTypes[0] != CellInteger {
		t.Errorf("tied column type = %q, want first-seen integer", analysis.ColumnTypes[0])
	}
}
