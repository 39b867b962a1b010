package song

import (
	"github.com/alnah/go-songbook/internal/pitch"
)

// View is a Document seen through one transposition and notation system.
// It is computed eagerly and never refers back to mutable state.
type View struct {
	doc       *Document
	semitones int
	system    *pitch.NotationSystem
	alt       *pitch.NotationSystem
	key       string
	lines     []ViewLine
	dirs      []Directive
}

// ViewLine is a line of a View. Chords are spelled strings.
type ViewLine struct {
	Kind          Kind
	Number        int
	Text          string
	Section       string
	SectionNumber int
	SectionLabel  string
	ChorusRef     int
	Segments      []ViewSegment
	Directive     Directive
}

// ViewSegment is a lyric run with the chords placed at its start.
type ViewSegment struct {
	Text   string
	Chords []ViewChord
}

// ViewChord is a spelled chord or an annotation.
type ViewChord struct {
	Name       string // full symbol, e.g. "F#m7/E"
	Root       string
	Extension  string
	Bass       string
	Annotation bool
	// Alt is the chord as written in the source, spelled in the
	// alternate notation. Empty without one.
	Alt string
}

// WithTransposition derives a View with every chord shifted by semitones
// (plus any in-song transposition) and spelled in sys. A PreferAuto
// system picks sharps or flats from the transposed song key.
func (d *Document) WithTransposition(semitones int, sys *pitch.NotationSystem) *View {
	return d.WithNotations(semitones, sys, nil)
}

// WithNotations is WithTransposition with a second system: every chord
// also gets its untransposed spelling in alt. A nil alt adds nothing.
func (d *Document) WithNotations(semitones int, sys, alt *pitch.NotationSystem) *View {
	v := &View{
		doc:       d,
		semitones: semitones,
	}

	key, hasKey := d.transposedKey(semitones)
	if hasKey {
		sys = sys.WithPreference(pitch.ResolvePreference(sys.Preference(), key))
		v.key = pitch.SpellKey(key, sys)
	} else {
		v.key = d.meta.Key
	}
	v.system = sys

	if alt != nil {
		if written, ok := d.transposedKey(0); ok {
			alt = alt.WithPreference(pitch.ResolvePreference(alt.Preference(), written))
		}
		v.alt = alt
	}

	v.lines = make([]ViewLine, len(d.lines))
	for i, l := range d.lines {
		v.lines[i] = v.viewLine(l)
	}

	v.dirs = make([]Directive, 0, len(d.directives))
	for _, l := range d.lines {
		if l.Kind == DirectiveLine {
			v.dirs = append(v.dirs, v.transposeDirective(l))
		}
	}
	return v
}

func (d *Document) transposedKey(semitones int) (pitch.Key, bool) {
	if d.meta.Key == "" {
		return pitch.Key{}, false
	}
	k, err := pitch.ParseKey(d.meta.Key, notationOrDefault(d.meta.KeyNotation))
	if err != nil {
		return pitch.Key{}, false
	}
	return pitch.TransposeKey(k, semitones+d.meta.KeyTranspose), true
}

func (v *View) viewLine(l Line) ViewLine {
	vl := ViewLine{
		Kind:          l.Kind,
		Number:        l.Number,
		Text:          l.Text,
		Section:       l.Section,
		SectionNumber: l.SectionNumber,
		SectionLabel:  l.SectionLabel,
		ChorusRef:     l.ChorusRef,
	}
	if l.Kind == DirectiveLine {
		vl.Directive = v.transposeDirective(l)
	}
	if l.Kind != Lyric {
		return vl
	}

	shift := v.semitones + l.Transpose
	for _, seg := range l.Segments() {
		vs := ViewSegment{Text: seg.Text}
		for _, p := range seg.Placements {
			vs.Chords = append(vs.Chords, v.viewChord(p, shift))
		}
		vl.Segments = append(vl.Segments, vs)
	}
	return vl
}

func (v *View) viewChord(p Placement, shift int) ViewChord {
	if p.IsAnnotation() {
		return ViewChord{Name: p.Annotation, Annotation: true}
	}
	c := pitch.TransposeChord(p.Chord, shift)
	vc := ViewChord{
		Name:      pitch.SpellChord(c, v.system),
		Root:      pitch.Spell(c.Root, v.system),
		Extension: c.Extension,
	}
	if c.Bass != nil {
		vc.Bass = pitch.Spell(*c.Bass, v.system)
	}
	if v.alt != nil {
		vc.Alt = pitch.SpellChord(p.Chord, v.alt)
	}
	return vc
}

// transposeDirective re-emits key directives in the view's key. Values
// that do not parse as a key are kept verbatim.
func (v *View) transposeDirective(l Line) Directive {
	dir := l.Directive
	if dir.Key != "key" {
		return dir
	}
	k, err := pitch.ParseKey(dir.Value, notationOrDefault(l.Notation))
	if err != nil {
		return dir
	}
	dir.Value = pitch.SpellKey(pitch.TransposeKey(k, v.semitones+l.Transpose), v.system)
	return dir
}

// Document returns the source document.
func (v *View) Document() *Document { return v.doc }

// Semitones returns the target transposition applied to the view.
func (v *View) Semitones() int { return v.semitones }

// Notation returns the notation system chords are spelled in.
func (v *View) Notation() *pitch.NotationSystem { return v.system }

// AltNotation returns the alternate system, or nil.
func (v *View) AltNotation() *pitch.NotationSystem { return v.alt }

// Key returns the transposed key, or the original text when it does not
// parse as a key.
func (v *View) Key() string { return v.key }

// Lines returns the view lines. The slice is shared; do not modify it.
func (v *View) Lines() []ViewLine { return v.lines }

// Directives returns the directives with key values transposed.
func (v *View) Directives() []Directive { return v.dirs }

func notationOrDefault(name string) *pitch.NotationSystem {
	sys, err := pitch.Lookup(name)
	if err != nil {
		return pitch.MustLookup(pitch.DefaultNotation)
	}
	return sys
}
