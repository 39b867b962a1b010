// Package pitch models musical pitch for chord sheets.
//
// Notes are pitch classes (an integer modulo 12) with an optional spelling
// preference. Transposition is plain modular arithmetic, so it is
// commutative and associative:
//
//	Transpose(Transpose(n, a), b) == Transpose(n, a+b)
//
// Spelling a note as text is the job of a NotationSystem. Built-in systems
// cover English letter names (sharp, flat, or key-driven spelling), German
// names (B for B-flat, H for B natural) and fixed-do solfège:
//
//	sys, _ := pitch.Lookup("english")
//	c, _ := pitch.ParseChord("Am7/G", sys)
//	pitch.SpellChord(pitch.TransposeChord(c, 2), sys) // "Bm7/A"
//
// Chord extensions ("maj7", "sus4", "7b9") are opaque text: only the root
// and the optional bass note are transposed.
package pitch
