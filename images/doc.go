// Package images enumerates embedded images on pages and attaches
// best-guess captions by scoring nearby text blocks. It can also fetch
// the stored image bytes and sniff their real format and dimensions.
package images
