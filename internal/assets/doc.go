// Package assets provides the templates and CSS styles songbooks are
// rendered with. Assets can be loaded from embedded files or a custom
// directory on disk.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (defaults)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the template engine. It tries the
// custom FilesystemLoader first and falls back to EmbeddedLoader when the
// asset is not found, so a project can override one template while keeping
// the others.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css        # CSS styles (e.g., default.css)
//	└── templates/
//	    ├── book.html         # whole-book HTML (also used for PDF)
//	    ├── song.html         # one-song HTML page
//	    ├── song-body.html    # song partial included by both
//	    ├── book.tex
//	    └── song.tex
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
