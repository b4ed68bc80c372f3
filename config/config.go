package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how much work the pipeline does per document.
type Mode string

const (
	// ModeStandard extracts text and tables.
	ModeStandard Mode = "standard"
	// ModeDetailed extracts everything, including images, and
	// preserves layout.
	ModeDetailed Mode = "detailed"
	// ModeFast extracts text only.
	ModeFast Mode = "fast"
)

// Format selects the shape of the JSON output.
type Format string

const (
	FormatHierarchical Format = "hierarchical"
	FormatFlat         Format = "flat"
	FormatRaw          Format = "raw"
)

// CleaningLevel selects how aggressively recurring artifacts are
// removed.
type CleaningLevel string

const (
	CleaningMinimal    CleaningLevel = "minimal"
	CleaningStandard   CleaningLevel = "standard"
	CleaningAggressive CleaningLevel = "aggressive"
)

// Config holds the full extraction configuration.
type Config struct {
	Mode   Mode   `yaml:"mode"`
	Format Format `yaml:"format"`

	PreserveLayout bool `yaml:"preserve_layout"`
	ValidateOutput bool `yaml:"validate_output"`

	// ExtractTables and ExtractImages override the mode default when
	// set. Nil means use the mode default.
	ExtractTables *bool `yaml:"extract_tables"`
	ExtractImages *bool `yaml:"extract_images"`

	OutputPath string `yaml:"output_path"`
	Password   string `yaml:"password"`
	Verbose    bool   `yaml:"verbose"`

	TextCleaningLevel CleaningLevel `yaml:"text_cleaning_level"`
	MinTableQuality   float64       `yaml:"min_table_quality"`

	// PageTimeoutSeconds bounds the table cascade per page.
	PageTimeoutSeconds int `yaml:"page_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:               ModeStandard,
		Format:             FormatHierarchical,
		ValidateOutput:     true,
		TextCleaningLevel:  CleaningStandard,
		MinTableQuality:    0.3,
		PageTimeoutSeconds: 30,
	}
}

// Load parses YAML configuration data over the defaults.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFile reads and parses a YAML config file. Missing file returns
// the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Overrides carries explicit settings, typically from command-line
// flags, that take precedence over both defaults and file values.
// Nil fields are left alone.
type Overrides struct {
	Mode           *Mode
	Format         *Format
	PreserveLayout *bool
	ExtractTables  *bool
	ExtractImages  *bool
	OutputPath     *string
	Password       *string
	Verbose        *bool
}

// Merge applies overrides and returns the resulting configuration.
func (c Config) Merge(o Overrides) Config {
	if o.Mode != nil {
		c.Mode = *o.Mode
	}
	if o.Format != nil {
		c.Format = *o.Format
	}
	if o.PreserveLayout != nil {
		c.PreserveLayout = *o.PreserveLayout
	}
	if o.ExtractTables != nil {
		c.ExtractTables = o.ExtractTables
	}
	if o.ExtractImages != nil {
		c.ExtractImages = o.ExtractImages
	}
	if o.OutputPath != nil {
		c.OutputPath = *o.OutputPath
	}
	if o.Password != nil {
		c.Password = *o.Password
	}
	if o.Verbose != nil {
		c.Verbose = *o.Verbose
	}
	return c
}

// Validate checks the enum fields and numeric ranges.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeStandard, ModeDetailed, ModeFast:
	default:
		return fmt.Errorf("invalid mode %q (use standard, detailed or fast)", c.Mode)
	}
	switch c.Format {
	case FormatHierarchical, FormatFlat, FormatRaw:
	default:
		return fmt.Errorf("invalid format %q (use hierarchical, flat or raw)", c.Format)
	}
	switch c.TextCleaningLevel {
	case CleaningMinimal, CleaningStandard, CleaningAggressive:
	default:
		return fmt.Errorf("invalid text_cleaning_level %q (use minimal, standard or aggressive)", c.TextCleaningLevel)
	}
	if c.MinTableQuality < 0 || c.MinTableQuality > 1 {
		return fmt.Errorf("min_table_quality %v out of range [0,1]", c.MinTableQuality)
	}
	if c.PageTimeoutSeconds <= 0 {
		return fmt.Errorf("page_timeout_seconds must be > 0")
	}
	return nil
}

// TablesEnabled resolves the table extraction flag: explicit setting
// wins, otherwise every mode but fast extracts tables.
func (c Config) TablesEnabled() bool {
	if c.ExtractTables != nil {
		return *c.ExtractTables
	}
	return c.Mode != ModeFast
}

// ImagesEnabled resolves the image extraction flag: explicit setting
// wins, otherwise only detailed mode extracts images.
func (c Config) ImagesEnabled() bool {
	if c.ExtractImages != nil {
		return *c.ExtractImages
	}
	return c.Mode == ModeDetailed
}

// LayoutPreserved resolves layout preservation: detailed mode always
// preserves layout.
func (c Config) LayoutPreserved() bool {
	if c.Mode == ModeDetailed {
		return true
	}
	return c.PreserveLayout
}

// PageTimeout returns the per-page table cascade budget.
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.PageTimeoutSeconds) * time.Second
}
