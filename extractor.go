package pdfstruct

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pdfstruct/pdfstruct/classify"
	"github.com/pdfstruct/pdfstruct/clean"
	"github.com/pdfstruct/pdfstruct/config"
	"github.com/pdfstruct/pdfstruct/images"
	"github.com/pdfstruct/pdfstruct/model"
	"github.com/pdfstruct/pdfstruct/output"
	"github.com/pdfstruct/pdfstruct/pages"
	"github.com/pdfstruct/pdfstruct/reader"
	"github.com/pdfstruct/pdfstruct/structure"
	"github.com/pdfstruct/pdfstruct/tables"
)

// Extractor provides a fluent interface for running the extraction
// pipeline. Configuration methods return a new Extractor, so chains
// can be built and reused safely:
//
//	base := pdfstruct.Open("document.pdf").Mode(config.ModeDetailed)
//	first, err := base.Pages(1).Extract()
//	rest, err := base.PageRange(2, 10).Extract()
//
// Terminal operations (Extract, Structure, Text, JSON, WriteJSON,
// PageCount, Metadata) run the pipeline and close the underlying
// document when the Extractor owns it.
type Extractor struct {
	filename     string
	source       reader.PageSource
	ownsSource   bool
	sourceOpened bool
	options      extractOptions

	// err holds the first configuration error; terminal operations
	// report it instead of running.
	err error
}

// clone creates a copy of the Extractor with independent options.
// The page source handle is shared.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		source:       e.source,
		ownsSource:   e.ownsSource,
		sourceOpened: e.sourceOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// Err returns the first configuration error recorded on the chain,
// or nil.
func (e *Extractor) Err() error { return e.err }

// Pages restricts extraction to the given pages (1-indexed). Page
// numbers are validated against the document when a terminal operation
// runs. Duplicates are ignored and pages are processed in ascending
// order.
func (e *Extractor) Pages(pageNums ...int) *Extractor {
	ne := e.clone()
	ne.options.pages = append([]int(nil), pageNums...)
	return ne
}

// PageRange restricts extraction to pages start through end inclusive
// (1-indexed).
func (e *Extractor) PageRange(start, end int) *Extractor {
	ne := e.clone()
	if start < 1 || end < start {
		ne.err = fmt.Errorf("invalid page range [%d,%d]", start, end)
		return ne
	}
	nums := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		nums = append(nums, n)
	}
	ne.options.pages = nums
	return ne
}

// WithConfig replaces the pipeline configuration wholesale. The
// configuration is validated immediately.
func (e *Extractor) WithConfig(cfg config.Config) *Extractor {
	ne := e.clone()
	if err := cfg.Validate(); err != nil {
		ne.err = err
		return ne
	}
	ne.options.config = cfg
	return ne
}

// WithConfigFile loads the pipeline configuration from a YAML file.
// A missing file leaves the defaults in place.
func (e *Extractor) WithConfigFile(path string) *Extractor {
	ne := e.clone()
	cfg, err := config.LoadFile(path)
	if err != nil {
		ne.err = err
		return ne
	}
	ne.options.config = cfg
	return ne
}

// Mode selects the extraction mode (standard, detailed or fast).
func (e *Extractor) Mode(m config.Mode) *Extractor {
	ne := e.clone()
	ne.options.config.Mode = m
	if err := ne.options.config.Validate(); err != nil {
		ne.err = err
	}
	return ne
}

// Format selects the output shape (hierarchical, flat or raw). Flat
// and raw skip section tree construction.
func (e *Extractor) Format(f config.Format) *Extractor {
	ne := e.clone()
	ne.options.config.Format = f
	if err := ne.options.config.Validate(); err != nil {
		ne.err = err
	}
	return ne
}

// WithPassword sets the password used to open encrypted documents.
func (e *Extractor) WithPassword(password string) *Extractor {
	ne := e.clone()
	ne.options.config.Password = password
	return ne
}

// ExtractTables overrides the mode default for table extraction.
func (e *Extractor) ExtractTables(on bool) *Extractor {
	ne := e.clone()
	ne.options.config.ExtractTables = &on
	return ne
}

// ExtractImages overrides the mode default for image extraction.
func (e *Extractor) ExtractImages(on bool) *Extractor {
	ne := e.clone()
	ne.options.config.ExtractImages = &on
	return ne
}

// PreserveLayout keeps layout ordering hints in the output. Detailed
// mode preserves layout regardless.
func (e *Extractor) PreserveLayout(on bool) *Extractor {
	ne := e.clone()
	ne.options.config.PreserveLayout = on
	return ne
}

// CleaningLevel selects how aggressively recurring page artifacts are
// removed (minimal, standard or aggressive).
func (e *Extractor) CleaningLevel(level config.CleaningLevel) *Extractor {
	ne := e.clone()
	ne.options.config.TextCleaningLevel = level
	if err := ne.options.config.Validate(); err != nil {
		ne.err = err
	}
	return ne
}

// WithLogger routes all pipeline diagnostics through logger.
func (e *Extractor) WithLogger(logger *slog.Logger) *Extractor {
	ne := e.clone()
	ne.options.logger = logger
	return ne
}

// logger returns the configured logger or slog.Default().
func (e *Extractor) logger() *slog.Logger {
	if e.options.logger != nil {
		return e.options.logger
	}
	return slog.Default()
}

// ensureSource opens the document lazily. Safe to call multiple times.
func (e *Extractor) ensureSource() error {
	if e.sourceOpened {
		if e.source == nil {
			return fmt.Errorf("extractor closed")
		}
		return nil
	}
	doc, err := reader.Open(e.filename, reader.Options{
		Password: e.options.config.Password,
		Logger:   e.logger(),
	})
	if err != nil {
		return err
	}
	e.source = doc
	e.ownsSource = true
	e.sourceOpened = true
	return nil
}

// Close releases the underlying document if this Extractor owns it.
// Sources supplied via FromSource stay open. Close is idempotent.
func (e *Extractor) Close() error {
	if !e.sourceOpened || !e.ownsSource {
		return nil
	}
	var err error
	if e.source != nil {
		err = e.source.Close()
	}
	e.source = nil
	e.sourceOpened = false
	return err
}

// resolvePages turns the page selection into the sorted, deduplicated
// list of pages to process. Nil selection means all pages.
func (e *Extractor) resolvePages() ([]int, error) {
	count := e.source.PageCount()
	if len(e.options.pages) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	seen := make(map[int]bool, len(e.options.pages))
	var out []int
	for _, n := range e.options.pages {
		if n < 1 || n > count {
			return nil, fmt.Errorf("page %d out of range [1,%d]", n, count)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}

// PageCount returns the number of pages in the document. This is a
// terminal operation: it closes an owned document before returning.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	defer e.Close()
	if err := e.ensureSource(); err != nil {
		return 0, err
	}
	return e.source.PageCount(), nil
}

// Metadata returns the document info properties. This is a terminal
// operation: it closes an owned document before returning.
func (e *Extractor) Metadata() (model.DocumentMetadata, error) {
	if e.err != nil {
		return model.DocumentMetadata{}, e.err
	}
	defer e.Close()
	if err := e.ensureSource(); err != nil {
		return model.DocumentMetadata{}, err
	}
	return e.source.Metadata(), nil
}

// Extract runs the full pipeline over the selected pages and returns
// the extraction result. Page-level failures are recorded in the
// result's Errors and do not abort the run.
func (e *Extractor) Extract() (*model.ExtractionResult, error) {
	return e.ExtractContext(context.Background())
}

// ExtractContext is Extract with an explicit context. Cancelling the
// context aborts the run between pages.
func (e *Extractor) ExtractContext(ctx context.Context) (*model.ExtractionResult, error) {
	defer e.Close()
	return e.run(ctx)
}

// Structure runs the pipeline and returns the hierarchical section
// tree, regardless of the configured output format.
func (e *Extractor) Structure() (*model.DocumentStructure, error) {
	ne := e.clone()
	ne.options.config.Format = config.FormatHierarchical
	result, err := ne.Extract()
	if err != nil {
		return nil, err
	}
	return result.Structure, nil
}

// Text runs the pipeline and returns the cleaned document text with
// pages separated by blank lines.
func (e *Extractor) Text() (string, error) {
	result, err := e.Extract()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, p := range result.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text())
	}
	return sb.String(), nil
}

// JSON runs the pipeline and serializes the result using the output
// contract: a document section (section tree or per-page fallback),
// document metadata, and extraction info.
func (e *Extractor) JSON() ([]byte, error) {
	result, err := e.Extract()
	if err != nil {
		return nil, err
	}
	builder := e.outputBuilder()
	return builder.JSON(builder.Build(result, e.snapshot()))
}

// WriteJSON runs the pipeline and writes the serialized result to
// path. An empty path falls back to the configured output_path.
func (e *Extractor) WriteJSON(path string) error {
	if path == "" {
		path = e.options.config.OutputPath
	}
	if path == "" {
		return fmt.Errorf("no output path given")
	}
	result, err := e.Extract()
	if err != nil {
		return err
	}
	builder := e.outputBuilder()
	return builder.WriteFile(path, builder.Build(result, e.snapshot()))
}

func (e *Extractor) outputBuilder() *output.Builder {
	return output.NewBuilderWithConfig(output.Config{
		Indent:   2,
		Validate: e.options.config.ValidateOutput,
		Debug:    e.options.config.Verbose,
		Logger:   e.logger(),
	})
}

// snapshot captures the effective configuration for the output's
// extraction_info section.
func (e *Extractor) snapshot() output.ConfigSnapshot {
	cfg := e.options.config
	return output.ConfigSnapshot{
		Mode:           string(cfg.Mode),
		ExtractTables:  cfg.TablesEnabled(),
		ExtractImages:  cfg.ImagesEnabled(),
		PreserveLayout: cfg.LayoutPreserved(),
	}
}

// run drives the per-page pipeline: read raw layout, build content
// blocks, classify, extract tables and images. Document-wide passes
// follow: artifact cleaning and section tree construction.
func (e *Extractor) run(ctx context.Context) (*model.ExtractionResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.ensureSource(); err != nil {
		return nil, err
	}
	start := time.Now()
	cfg := e.options.config
	logger := e.logger()

	pageNums, err := e.resolvePages()
	if err != nil {
		return nil, err
	}

	processor := pages.NewProcessor(logger)

	classifyCfg := classify.DefaultConfig()
	classifyCfg.Debug = cfg.Verbose
	classifyCfg.Logger = logger
	classifier := classify.NewWithConfig(classifyCfg)

	var tableEx *tables.Extractor
	if cfg.TablesEnabled() {
		tableCfg := tables.DefaultConfig()
		tableCfg.MinQualityScore = cfg.MinTableQuality
		tableCfg.PageTimeout = cfg.PageTimeout()
		tableCfg.Debug = cfg.Verbose
		tableCfg.Logger = logger
		tableEx = tables.NewExtractorWithConfig(tableCfg)
	}

	var imageEx *images.ChartExtractor
	var byteSrc images.ByteSource
	if cfg.ImagesEnabled() {
		imageCfg := images.DefaultConfig()
		imageCfg.Debug = cfg.Verbose
		imageCfg.Logger = logger
		imageEx = images.NewChartExtractorWithConfig(imageCfg)
		byteSrc, _ = e.source.(images.ByteSource)
	}

	result := &model.ExtractionResult{
		FilePath: e.filename,
		Metadata: e.source.Metadata(),
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, n := range pageNums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := e.source.Page(ctx, n)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("page failed", "page", n, "stage", "reader", "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("page %d reader: %v", n, err))
			continue
		}

		pc := model.PageContent{Number: n, Width: raw.Width, Height: raw.Height, Rotation: raw.Rotation}
		pc.Blocks = classifier.ClassifyPage(processor.ContentBlocks(raw))

		if tableEx != nil {
			tr := tableEx.ExtractPage(ctx, raw)
			switch {
			case tr.Success:
				pc.Tables = tr.Tables
			case strings.HasPrefix(tr.ErrorMessage, "extraction timed out"):
				logger.Warn("page failed", "page", n, "stage", "tables", "error", tr.ErrorMessage)
				result.Errors = append(result.Errors, fmt.Sprintf("page %d tables: %s", n, tr.ErrorMessage))
			}
		}

		if imageEx != nil {
			infos := imageEx.ExtractPage(raw, pc.Blocks)
			if byteSrc != nil {
				for i := range infos {
					imageEx.Enrich(byteSrc, &infos[i])
				}
			}
			pc.Images = infos
		}

		result.Pages = append(result.Pages, pc)
	}

	e.cleanPages(result)

	if cfg.Format == config.FormatHierarchical {
		structCfg := structure.DefaultConfig()
		structCfg.Debug = cfg.Verbose
		structCfg.Logger = logger
		result.Structure = structure.NewBuilderWithConfig(structCfg).Build(result.Pages, result.Metadata.Title)
	}

	if len(result.Pages) > 0 && blockCount(result) == 0 {
		result.Warnings = append(result.Warnings,
			"no text content found; document may contain only scanned images")
	}

	result.ProcessingTime = time.Since(start)
	logger.Debug("extraction complete",
		"pages", len(result.Pages),
		"tables", result.TableCount(),
		"images", result.ImageCount(),
		"duration", result.ProcessingTime)
	return result, nil
}

// cleanPages applies the configured cleaning level. Minimal skips the
// document-wide artifact pass but still normalizes text.
func (e *Extractor) cleanPages(result *model.ExtractionResult) {
	cfg := e.options.config
	cleanCfg := clean.DefaultConfig()
	cleanCfg.Debug = cfg.Verbose
	cleanCfg.Logger = e.logger()
	if cfg.TextCleaningLevel == config.CleaningAggressive {
		cleanCfg.ArtifactThreshold = 0.3
	}
	cleaner := clean.NewCleanerWithConfig(cleanCfg)

	if cfg.TextCleaningLevel == config.CleaningMinimal {
		for pi := range result.Pages {
			blocks := result.Pages[pi].Blocks
			for bi := range blocks {
				blocks[bi].Text = cleaner.NormalizeText(blocks[bi].Text)
			}
		}
		return
	}
	result.Pages = cleaner.CleanPages(result.Pages)
}

// blockCount totals the text blocks across all pages.
func blockCount(result *model.ExtractionResult) int {
	n := 0
	for _, p := range result.Pages {
		n += len(p.Blocks)
	}
	return n
}
