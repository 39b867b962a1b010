// Package chordpro reads ChordPro-style song sources into song.Document
// values.
//
// The syntax is line oriented. With the default delimiters:
//
//	{title: Amazing Grace}     directive line
//	{start_of_chorus}          key-only directive
//	[G]Amazing [C]grace        lyric line with chord markers
//	[*Coda]                    annotation marker, never transposed
//	# capo on 2                comment line
//
// Delimiters are configurable through Syntax. Directive keys are matched
// case-insensitively and short aliases (t, st, c, soc, eoc, ...) are
// resolved to their long form. Keys outside the recognized set are kept as
// opaque directives.
package chordpro
