package clean

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdfstruct/pdfstruct/model"
)

// Config controls artifact detection.
type Config struct {
	// ArtifactThreshold is the fraction of pages a text must appear on
	// to be flagged as an artifact.
	ArtifactThreshold float64

	// PositionTolerance quantizes block positions when grouping
	// repeated header/footer placements (points).
	PositionTolerance float64

	// Debug enables per-artifact logging.
	Debug bool

	// Logger receives diagnostics. slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the standard cleaner configuration.
func DefaultConfig() Config {
	return Config{
		ArtifactThreshold: 0.5,
		PositionTolerance: 5.0,
	}
}

// Cleaner removes recurring artifacts and normalizes text document-wide.
type Cleaner struct {
	config Config
	logger *slog.Logger
}

// NewCleaner creates a cleaner with the default configuration.
func NewCleaner() *Cleaner {
	return NewCleanerWithConfig(DefaultConfig())
}

// NewCleanerWithConfig creates a cleaner with a custom configuration.
func NewCleanerWithConfig(config Config) *Cleaner {
	if config.ArtifactThreshold <= 0 {
		config.ArtifactThreshold = 0.5
	}
	if config.PositionTolerance <= 0 {
		config.PositionTolerance = 5.0
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{config: config, logger: logger}
}

// Artifact is a text that recurs across pages at artifact positions or
// in artifact shapes.
type Artifact struct {
	Text      string
	BBox      model.BoundingBox
	Pages     []int
	Frequency int
}

// ArtifactReport summarizes detection over a document.
type ArtifactReport struct {
	TotalPages        int
	ArtifactsDetected int
	Threshold         float64
	Artifacts         []ArtifactInfo
}

// ArtifactInfo is one reported artifact with its page coverage.
type ArtifactInfo struct {
	Text            string
	Frequency       int
	Pages           []int
	CoveragePercent float64
	BBox            model.BoundingBox
}

var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d+\s*$`),
	regexp.MustCompile(`(?i)^\s*page\s+\d+\s*$`),
	regexp.MustCompile(`^\s*\d+\s*/\s*\d+\s*$`),
	regexp.MustCompile(`^\s*-\s*\d+\s*-\s*$`),
}

var (
	allCapsRunRe  = regexp.MustCompile(`^[A-Z\s]{10,}$`)
	dateRe        = regexp.MustCompile(`(?i)^\d{1,2}/\d{1,2}/\d{2,4}$`)
	urlRe         = regexp.MustCompile(`(?i)^www\.`)
	numericJunkRe = regexp.MustCompile(`^[\d\s\-./]+$`)
)

// CleanPages removes detected artifacts from every page and normalizes
// the surviving block text. Tables and images pass through untouched.
func (c *Cleaner) CleanPages(pages []model.PageContent) []model.PageContent {
	if len(pages) == 0 {
		return pages
	}
	artifacts := c.detectArtifacts(pages)
	if c.config.Debug {
		c.logger.Debug("artifact detection", "pages", len(pages), "artifacts", len(artifacts))
	}

	cleaned := make([]model.PageContent, 0, len(pages))
	for _, page := range pages {
		remove := make(map[string]bool)
		for _, a := range artifacts {
			for _, p := range a.Pages {
				if p == page.Number {
					remove[a.Text] = true
					break
				}
			}
		}

		out := model.PageContent{
			Number:   page.Number,
			Width:    page.Width,
			Height:   page.Height,
			Rotation: page.Rotation,
			Tables:   page.Tables,
			Images:   page.Images,
		}
		for _, block := range page.Blocks {
			if remove[strings.TrimSpace(block.Text)] {
				continue
			}
			text := c.NormalizeText(block.Text)
			if strings.TrimSpace(text) == "" {
				continue
			}
			block.Text = text
			out.Blocks = append(out.Blocks, block)
		}
		cleaned = append(cleaned, out)
	}
	return cleaned
}

// Report runs artifact detection without modifying pages.
func (c *Cleaner) Report(pages []model.PageContent) ArtifactReport {
	artifacts := c.detectArtifacts(pages)
	report := ArtifactReport{
		TotalPages:        len(pages),
		ArtifactsDetected: len(artifacts),
		Threshold:         c.config.ArtifactThreshold,
	}
	for _, a := range artifacts {
		coverage := 0.0
		if len(pages) > 0 {
			coverage = float64(a.Frequency) / float64(len(pages)) * 100
		}
		report.Artifacts = append(report.Artifacts, ArtifactInfo{
			Text:            a.Text,
			Frequency:       a.Frequency,
			Pages:           a.Pages,
			CoveragePercent: coverage,
			BBox:            a.BBox,
		})
	}
	sort.SliceStable(report.Artifacts, func(i, j int) bool {
		return report.Artifacts[i].Frequency > report.Artifacts[j].Frequency
	})
	return report
}

type placement struct {
	text string
	page int
	bbox model.BoundingBox
}

// detectArtifacts finds texts that repeat across pages, either with
// artifact-shaped content anywhere or with any content at a recurring
// header/footer position.
func (c *Cleaner) detectArtifacts(pages []model.PageContent) []Artifact {
	threshold := int(float64(len(pages)) * c.config.ArtifactThreshold)
	if threshold < 1 {
		threshold = 1
	}

	positionGroups := make(map[string][]placement)
	var positionOrder []string
	frequency := make(map[string]int)
	var textOrder []string

	for _, page := range pages {
		for _, block := range page.Blocks {
			text := strings.TrimSpace(block.Text)
			if utf8.RuneCountInString(text) < 2 {
				continue
			}
			key := c.positionKey(block.BBox)
			if _, seen := positionGroups[key]; !seen {
				positionOrder = append(positionOrder, key)
			}
			positionGroups[key] = append(positionGroups[key], placement{text, page.Number, block.BBox})
			if _, seen := frequency[text]; !seen {
				textOrder = append(textOrder, text)
			}
			frequency[text]++
		}
	}

	merged := make(map[string]*Artifact)
	var artifactOrder []string
	add := func(text string, bbox model.BoundingBox, pageNums map[int]bool) {
		a, ok := merged[text]
		if !ok {
			a = &Artifact{Text: text, BBox: bbox}
			merged[text] = a
			artifactOrder = append(artifactOrder, text)
		}
		seen := make(map[int]bool, len(a.Pages))
		for _, p := range a.Pages {
			seen[p] = true
		}
		for p := range pageNums {
			if !seen[p] {
				a.Pages = append(a.Pages, p)
			}
		}
		sort.Ints(a.Pages)
		a.Frequency = len(a.Pages)
	}

	// Frequency signal: repeated artifact-shaped text anywhere.
	for _, text := range textOrder {
		if frequency[text] < threshold || !c.isLikelyArtifact(text) {
			continue
		}
		pageNums := make(map[int]bool)
		var bbox model.BoundingBox
		found := false
		for _, key := range positionOrder {
			for _, p := range positionGroups[key] {
				if p.text == text {
					pageNums[p.page] = true
					if !found {
						bbox = p.bbox
						found = true
					}
				}
			}
		}
		add(text, bbox, pageNums)
	}

	// Position signal: any text repeating at a header/footer position.
	pageHeight := pages[0].Height
	for _, key := range positionOrder {
		entries := positionGroups[key]
		if len(entries) < threshold {
			continue
		}
		if !c.isHeaderFooterPosition(entries[0].bbox, pageHeight) {
			continue
		}
		byText := make(map[string][]placement)
		var order []string
		for _, p := range entries {
			if _, seen := byText[p.text]; !seen {
				order = append(order, p.text)
			}
			byText[p.text] = append(byText[p.text], p)
		}
		for _, text := range order {
			group := byText[text]
			if len(group) < threshold {
				continue
			}
			pageNums := make(map[int]bool)
			for _, p := range group {
				pageNums[p.page] = true
			}
			add(text, group[0].bbox, pageNums)
		}
	}

	out := make([]Artifact, 0, len(artifactOrder))
	for _, text := range artifactOrder {
		out = append(out, *merged[text])
	}
	return out
}

// positionKey quantizes a position for grouping repeated placements.
func (c *Cleaner) positionKey(bbox model.BoundingBox) string {
	tol := c.config.PositionTolerance
	x := math.Round(bbox.X0/tol) * tol
	y := math.Round(bbox.Y0/tol) * tol
	return fmt.Sprintf("%.1f,%.1f", x, y)
}

// isLikelyArtifact reports whether text has the shape of a page
// number, running header or similar furniture.
func (c *Cleaner) isLikelyArtifact(text string) bool {
	text = strings.TrimSpace(text)
	if IsPageNumber(text) {
		return true
	}
	if allCapsRunRe.MatchString(text) || dateRe.MatchString(text) || urlRe.MatchString(text) {
		return true
	}
	if strings.ContainsAny(text, "@©") {
		return true
	}
	if utf8.RuneCountInString(text) <= 3 && !isAlpha(text) {
		return true
	}
	return numericJunkRe.MatchString(text)
}

// isHeaderFooterPosition reports whether the box starts in the top or
// bottom tenth of the page.
func (c *Cleaner) isHeaderFooterPosition(bbox model.BoundingBox, pageHeight float64) bool {
	return bbox.Y0 < pageHeight*0.1 || bbox.Y0 > pageHeight*0.9
}

// IsPageNumber reports whether text matches a standalone page number
// form ("7", "Page 7", "7 / 12", "- 7 -").
func IsPageNumber(text string) bool {
	for _, re := range pageNumberPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// RemovePageNumbers drops lines that are standalone page numbers.
func (c *Cleaner) RemovePageNumbers(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !IsPageNumber(strings.TrimSpace(line)) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
