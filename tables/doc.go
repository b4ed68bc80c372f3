// Package tables extracts tabular data from raw page layouts.
//
// Extraction runs as a cascade: a cheap page analysis picks a ruled or
// unruled strategy, then a chain of backends is tried in order until
// one produces grids that pass its validation contract. Winning grids
// are normalized and quality-scored before they are accepted.
package tables
