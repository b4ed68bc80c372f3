// Package output assembles extraction results into the final JSON
// document: a typed content tree under "document", the source file's
// metadata, and an "extraction_info" record of how the run went.
package output
