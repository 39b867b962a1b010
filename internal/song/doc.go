// Package song holds the parsed form of a song: lines of lyric text with
// chord placements, directives, comments and blank lines.
//
// A Document is immutable once built. Accessors return copies, and
// WithTransposition derives a View with every chord transposed and spelled
// for one output target, so many targets can read the same Document
// concurrently.
package song
