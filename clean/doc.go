// Package clean removes recurring page artifacts (running headers,
// footers, page numbers) and normalizes extracted text.
//
// Artifact detection needs the whole document: a block is removed when
// its text repeats on enough pages and looks artifact-shaped, or when
// it recurs at the same header/footer position. Normalization expands
// ligatures and smart punctuation, collapses whitespace and applies a
// final Unicode NFC pass.
package clean
