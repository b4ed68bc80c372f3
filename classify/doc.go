// Package classify labels text spans as headers, list items or
// paragraphs by comparing font attributes against a per-page modal
// baseline, then groups adjacent paragraph spans into blocks.
package classify
