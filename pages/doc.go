// Package pages converts raw page layouts into the typed content model
// and computes per-page statistics used by later pipeline stages.
package pages
