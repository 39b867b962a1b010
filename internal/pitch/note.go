package pitch

// Semitones in an octave.
const Semitones = 12

// Accidental records how a note was written. It never changes the pitch
// class; it only guides spelling under a notation system that prefers
// PreferAuto.
type Accidental int

// Accidental values.
const (
	Natural Accidental = iota
	Sharp
	Flat
)

// String returns the accidental name.
func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "sharp"
	case Flat:
		return "flat"
	default:
		return "natural"
	}
}

// Note is a pitch class with a spelling preference.
// Class is always in [0, 12) for notes built by this package.
type Note struct {
	Class      int        `json:"class"`
	Accidental Accidental `json:"accidental"`
}

// NewNote returns the note for a semitone position, reduced modulo 12.
func NewNote(semitone int, acc Accidental) Note {
	return Note{Class: mod12(semitone), Accidental: acc}
}

// Transpose shifts n by semitones (which may be negative, of any size).
// The spelling preference is kept.
func Transpose(n Note, semitones int) Note {
	return Note{Class: mod12(mod12(n.Class) + mod12(semitones)), Accidental: n.Accidental}
}

func mod12(v int) int {
	return ((v % Semitones) + Semitones) % Semitones
}
