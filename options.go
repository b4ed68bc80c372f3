package pdfstruct

import (
	"log/slog"

	"github.com/pdfstruct/pdfstruct/config"
)

// extractOptions holds the per-extractor configuration.
type extractOptions struct {
	// Page selection (1-indexed in API, stored as-is). Nil means all
	// pages.
	pages []int

	// config drives the pipeline stages.
	config config.Config

	// logger receives diagnostics for every stage. slog.Default()
	// when nil.
	logger *slog.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() extractOptions {
	return extractOptions{
		pages:  nil,
		config: config.Default(),
	}
}

// clone creates a copy of extractOptions safe to mutate independently.
func (o extractOptions) clone() extractOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
