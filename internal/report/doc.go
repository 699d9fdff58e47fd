// Package report renders scan results for people: Markdown for terminals and files,
// and HTML (Markdown converted by goldmark) for the browser.
//
// Raw HTML in recognized text is never passed through; goldmark's default renderer
// omits it.
package report
