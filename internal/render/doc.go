// Package render assembles the data trees templates are executed with.
//
// A CrossRef is computed once per build from the parsed songs, in manifest
// order, and shared read-only by every target. A Builder combines it with
// book metadata and one target's transposition and notation to produce a
// Context, for a single song or for the whole book.
package render
