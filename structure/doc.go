// Package structure assembles classified text blocks, tables and images
// into a hierarchical section tree keyed on the headers that precede
// them in reading order.
package structure
