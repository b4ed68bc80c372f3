// Package model defines the core data types shared across the extraction
// pipeline: geometry, fonts, text spans and blocks, tables, images, page
// content, and the hierarchical section tree that forms the final document
// structure.
//
// Coordinates follow the PDF page convention used by the span source:
// y0 grows downward, so smaller y0 means higher on the page.
package model
