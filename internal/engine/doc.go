// Package engine is the template-engine boundary: it turns a render context
// into artifact bytes.
//
// Pongo2Renderer executes Django-style templates loaded through an
// assets.AssetLoader, so a custom asset directory overrides the embedded
// defaults file by file. JSONRenderer dumps the context itself. The format
// registry maps output formats to file extensions, default templates and
// the renderer that serves them.
package engine
