// Package pdfstruct extracts structured content from PDF files: text
// classified by role (headers, paragraphs, lists), tables, images with
// captions, and a hierarchical section tree, serialized as JSON.
//
// Basic usage:
//
//	result, err := pdfstruct.Open("document.pdf").Extract()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.TableCount(), "tables on", len(result.Pages), "pages")
//
// With options:
//
//	data, err := pdfstruct.Open("report.pdf").
//	    Mode(config.ModeDetailed).
//	    Pages(1, 2, 3).
//	    JSON()
//
// For advanced use cases, the lower-level reader and pipeline packages
// (classify, structure, tables, clean, images, output) are also
// available.
package pdfstruct

import (
	"github.com/pdfstruct/pdfstruct/reader"
)

// Open opens a PDF file and returns an Extractor for fluent
// configuration. The returned Extractor must be closed when done,
// either explicitly via Close() or implicitly when calling a terminal
// operation like Extract().
//
// Example:
//
//	result, err := pdfstruct.Open("document.pdf").Extract()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromSource creates an Extractor reading pages from an already-open
// PageSource. This is useful for custom page sources and for tests.
// Note: the caller keeps ownership and is responsible for closing the
// source.
//
// Example:
//
//	doc, err := reader.Open("document.pdf", reader.Options{})
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	result, err := pdfstruct.FromSource(doc).Extract()
func FromSource(src reader.PageSource) *Extractor {
	return &Extractor{
		source:       src,
		ownsSource:   false,
		sourceOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfstruct.Must(pdfstruct.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
