// Package pipeline turns the Markdown a project supplies for its book
// preface into HTML fragments that templates can embed.
//
// The stages are:
//   - Markdown preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark
//   - Sanitizing with bluemonday, since raw HTML is allowed in the source
//   - Rewriting relative image and link paths to file:// URLs so the PDF
//     renderer can resolve them
//
// A plain-text rendering is produced alongside for non-HTML targets.
package pipeline
