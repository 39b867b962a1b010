package pitch

import "strings"

// Chord is a root note, an opaque extension and an optional bass note
// (slash chord). Extension text is never interpreted.
type Chord struct {
	Root      Note   `json:"root"`
	Extension string `json:"extension,omitempty"`
	Bass      *Note  `json:"bass,omitempty"`
}

// TransposeChord shifts the root and bass of c by semitones. The extension
// is left untouched.
func TransposeChord(c Chord, semitones int) Chord {
	out := Chord{
		Root:      Transpose(c.Root, semitones),
		Extension: c.Extension,
	}
	if c.Bass != nil {
		bass := Transpose(*c.Bass, semitones)
		out.Bass = &bass
	}
	return out
}

// SpellChord renders c in sys, e.g. "F#m7/E".
func SpellChord(c Chord, sys *NotationSystem) string {
	var b strings.Builder
	b.WriteString(Spell(c.Root, sys))
	b.WriteString(c.Extension)
	if c.Bass != nil {
		b.WriteByte('/')
		b.WriteString(Spell(*c.Bass, sys))
	}
	return b.String()
}

// ParseChord reads a chord symbol: a root spelled in sys, any extension
// text, and an optional "/bass". A "sus" right after a note name belongs
// to the extension. When the part after the last slash is not
// a note (as in "C6/9") it stays in the extension.
func ParseChord(s string, sys *NotationSystem) (Chord, error) {
	sym, ok := sys.parseSymbol(strings.TrimSpace(s))
	if !ok {
		return Chord{}, &MalformedChordError{Text: s, System: sys.name}
	}

	c := Chord{Root: sym.root}
	rest := sym.rest
	if i := strings.LastIndexByte(rest, '/'); i >= 0 {
		if bass, err := ParseNote(rest[i+1:], sys); err == nil {
			c.Bass = &bass
			rest = rest[:i]
		}
	}
	c.Extension = rest
	return c, nil
}
