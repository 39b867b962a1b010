// Package songbook compiles chord-annotated song files into songbooks.
//
// # Quick Start
//
// Create an Orchestrator, describe the build in a Manifest, and run it:
//
//	orch, err := songbook.New(
//	    songbook.WithSink(songbook.NewDirSink("output")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer orch.Close()
//
//	report, err := orch.Build(ctx, songbook.Manifest{
//	    Book:  songbook.Book{Title: "Campfire", Date: "auto"},
//	    Songs: []string{"songs/grace.cho", "songs/shenandoah.cho"},
//	    Targets: []songbook.Target{
//	        {Name: "web", File: "book.html"},
//	        {Name: "print", File: "book.pdf"},
//	        {Name: "capo2", File: "sheets/{anchor}.pdf", Mode: songbook.ModeSong, Transpose: -2},
//	    },
//	})
//
// The report is returned even when the build fails. It lists every song,
// every render and every artifact with its BLAKE3 hash.
//
// # Song Files
//
// Songs use ChordPro-style markup. Directives sit in braces on their own
// line, chords sit in brackets before the syllable they belong to:
//
//	{title: Amazing Grace}
//	{key: G}
//	[G]Amazing [C]grace, how [G]sweet the sound
//
// Unknown directives are kept and handed to templates untouched. The
// delimiters can be changed through Manifest.Syntax.
//
// # Build Pipeline
//
// A build moves through these states:
//
//  1. Collecting: the manifest is validated and the book metadata resolved.
//  2. Parsing: every song is read, hashed and parsed once, in parallel.
//  3. Rendering: each target renders the whole book, or each song in song
//     mode, through pongo2 templates. PDF targets render HTML and print it
//     with headless Chrome.
//  4. Done or Failed.
//
// Songs are numbered once per build, so every target shares the same
// numbers, anchors and table of contents.
//
// # Failures
//
// FailFast, the default, stops scheduling work after the first failure.
// BestEffort skips failed songs and renders and reports them as warnings,
// unless Manifest.MaxFailures is exceeded.
//
// # Incremental Builds
//
// WithStateStore records a fingerprint per artifact. A later build skips
// the artifact when nothing it depends on changed and the sink still holds
// the recorded bytes:
//
//	store, err := songbook.OpenStateStore(".songbook/state.db")
//	orch, err := songbook.New(songbook.WithStateStore(store), ...)
//
// # Custom Assets
//
// Override built-in styles and templates with an asset directory:
//
//	assets/
//	├── styles/
//	│   └── print.css
//	└── templates/
//	    ├── book.html
//	    └── chords.tex
//
// # Browser Requirements
//
// PDF targets require Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run (~/.cache/rod/browser/). Builds without PDF
// targets never start a browser.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package songbook
