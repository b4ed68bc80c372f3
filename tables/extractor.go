package tables

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/reader"
)

// Extraction strategies chosen by page analysis.
const (
	StrategyRuled   = "ruled"
	StrategyUnruled = "unruled"
)

// Config controls the cascading extractor.
type Config struct {
	// MinQualityScore is the minimum estimated quality for a table to
	// be accepted.
	MinQualityScore float64

	// EnablePreAnalysis analyzes page structure to pick the strategy.
	// When off, every page uses the ruled chain first.
	EnablePreAnalysis bool

	// FallbackOnFailure tries the other strategy's chain when the
	// primary chain produces nothing.
	FallbackOnFailure bool

	// PageTimeout bounds the cascade per page. Zero disables it.
	PageTimeout time.Duration

	// RuledChain and UnruledChain override the default backends.
	RuledChain   []*Backend
	UnruledChain []*Backend

	// Debug enables verbose logging.
	Debug bool

	// Logger receives diagnostics. slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the standard extractor configuration.
func DefaultConfig() Config {
	return Config{
		MinQualityScore:   0.3,
		EnablePreAnalysis: true,
		FallbackOnFailure: true,
		PageTimeout:       30 * time.Second,
	}
}

// PageAnalysis is the structural summary used to pick a strategy.
type PageAnalysis struct {
	Page           int
	HasLines       bool
	LineCount      int
	HasTextColumns bool
	TextBlocks     int
	Strategy       string
	Confidence     float64
}

// Result is the outcome of table extraction for one page.
type Result struct {
	Page          int
	Tables        []model.Table
	Method        string
	QualityScores []float64
	Duration      time.Duration
	Success       bool
	ErrorMessage  string
}

// Extractor runs the cascading strategy: analyze the page, try the
// matching backend chain, fall back to the other chain, then keep only
// tables that survive the quality gate.
type Extractor struct {
	config     Config
	logger     *slog.Logger
	normalizer *Normalizer
	ruled      []*Backend
	unruled    []*Backend
	analyses   map[int]PageAnalysis
}

// NewExtractor creates an extractor with the default configuration and
// backend chains.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with a custom
// configuration. Missing backend chains get the built-in detectors.
func NewExtractorWithConfig(config Config) *Extractor {
	if config.MinQualityScore <= 0 {
		config.MinQualityScore = 0.3
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ruled := config.RuledChain
	if ruled == nil {
		plumber := NewRuledDetector()
		lattice := NewRuledDetector()
		lattice.AlignmentTolerance = 2.0
		ruled = []*Backend{
			NewPlumberBackend(plumber.Extract),
			NewLatticeBackend(lattice.Extract),
		}
	}
	unruled := config.UnruledChain
	if unruled == nil {
		stream := NewUnruledDetector()
		tabula := NewUnruledDetector()
		tabula.ColumnTolerance = 15.0
		unruled = []*Backend{
			NewStreamBackend(stream.Extract),
			NewTabulaBackend(tabula.Extract),
		}
	}
	return &Extractor{
		config:     config,
		logger:     logger,
		normalizer: NewNormalizer(),
		ruled:      ruled,
		unruled:    unruled,
		analyses:   make(map[int]PageAnalysis),
	}
}

// ExtractPage runs the cascade on one page. It never returns an error:
// failures are reported in the Result so document processing can
// continue.
func (e *Extractor) ExtractPage(ctx context.Context, page *reader.RawPage) Result {
	start := time.Now()
	result := Result{Page: pageNumber(page)}

	if e.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.PageTimeout)
		defer cancel()
	}

	analysis := PageAnalysis{Page: result.Page, Strategy: StrategyRuled}
	if e.config.EnablePreAnalysis {
		analysis = e.AnalyzePage(page)
		if e.config.Debug {
			e.logger.Debug("page analysis",
				"page", result.Page,
				"strategy", analysis.Strategy,
				"confidence", analysis.Confidence)
		}
	}

	primary, secondary := e.ruled, e.unruled
	if analysis.Strategy == StrategyUnruled {
		primary, secondary = e.unruled, e.ruled
	}

	grids, method, ok := e.runChain(ctx, primary, page)
	if !ok && e.config.FallbackOnFailure {
		if grids, method, ok = e.runChain(ctx, secondary, page); ok {
			method = "fallback-" + method
		}
	}

	result.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		result.ErrorMessage = "extraction timed out: " + err.Error()
		return result
	}
	if !ok {
		result.ErrorMessage = "no tables extracted using any method"
		return result
	}

	for _, grid := range grids {
		cells := e.normalizer.Normalize(grid.Cells)
		shape := e.normalizer.AnalyzeStructure(cells)
		if !shape.Valid || shape.EstimatedQuality < e.config.MinQualityScore {
			if e.config.Debug {
				e.logger.Debug("table rejected",
					"page", result.Page,
					"quality", shape.EstimatedQuality,
					"reason", shape.Reason)
			}
			continue
		}
		result.Tables = append(result.Tables, model.Table{
			Page:       result.Page,
			BBox:       grid.BBox,
			Headers:    cells[0],
			Rows:       cells[1:],
			Method:     method,
			Confidence: shape.EstimatedQuality,
		})
		result.QualityScores = append(result.QualityScores, shape.EstimatedQuality)
	}

	result.Method = method
	result.Success = len(result.Tables) > 0
	result.Duration = time.Since(start)
	if !result.Success {
		result.ErrorMessage = "no tables passed validation"
	}
	return result
}

// ExtractDocument runs the cascade over every page of the source.
func (e *Extractor) ExtractDocument(ctx context.Context, src reader.PageSource) []Result {
	count := src.PageCount()
	results := make([]Result, 0, count)
	for n := 1; n <= count; n++ {
		page, err := src.Page(ctx, n)
		if err != nil {
			results = append(results, Result{
				Page:         n,
				ErrorMessage: "page load failed: " + err.Error(),
			})
			continue
		}
		results = append(results, e.ExtractPage(ctx, page))
	}
	return results
}

// runChain tries each backend in order, isolating individual failures.
// The first backend with at least one valid grid wins.
func (e *Extractor) runChain(ctx context.Context, chain []*Backend, page *reader.RawPage) ([]Grid, string, bool) {
	for _, backend := range chain {
		if ctx.Err() != nil {
			return nil, "", false
		}
		grids, err := backend.Extract(ctx, page)
		if err != nil {
			e.logger.Debug("backend failed",
				"backend", backend.Name(),
				"page", pageNumber(page),
				"error", err)
			continue
		}
		if len(grids) > 0 {
			return grids, backend.Name(), true
		}
	}
	return nil, "", false
}

// AnalyzePage inspects page structure to recommend a strategy. Results
// are memoized per page number.
func (e *Extractor) AnalyzePage(page *reader.RawPage) PageAnalysis {
	if page == nil {
		return PageAnalysis{Strategy: StrategyRuled, Confidence: 0.1}
	}
	if cached, ok := e.analyses[page.Number]; ok {
		return cached
	}

	analysis := PageAnalysis{Page: page.Number}
	analysis.LineCount = len(page.Rules)
	analysis.HasLines = analysis.LineCount > 10

	blocks := page.TextBlocks()
	analysis.TextBlocks = len(blocks)
	xCounts := make(map[float64]int)
	for _, b := range blocks {
		for _, l := range b.Lines {
			for _, s := range l.Spans {
				xCounts[math.Round(s.BBox.X0/10)*10]++
			}
		}
	}
	common := 0
	for _, n := range xCounts {
		if n > 2 {
			common++
		}
	}
	analysis.HasTextColumns = common >= 2

	switch {
	case analysis.HasLines:
		analysis.Strategy = StrategyRuled
		analysis.Confidence = math.Min(0.9, float64(analysis.LineCount)/50)
	case analysis.HasTextColumns:
		analysis.Strategy = StrategyUnruled
		analysis.Confidence = 0.7
	default:
		analysis.Strategy = StrategyRuled
		analysis.Confidence = 0.3
	}

	e.analyses[page.Number] = analysis
	return analysis
}

func pageNumber(page *reader.RawPage) int {
	if page == nil {
		return 0
	}
	return page.Number
}
