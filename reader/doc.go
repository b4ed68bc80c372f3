// Package reader opens PDF documents and turns each page into a raw
// layout snapshot of positioned text spans, ruling lines and image
// placements. It is the only package that talks to the PDF file format;
// everything downstream works on RawPage values.
//
// Coordinates in RawPage are top-left origin with y growing downward,
// converted from the PDF's bottom-left convention at assembly time.
package reader
