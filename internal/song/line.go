package song

import (
	"slices"

	"github.com/alnah/go-songbook/internal/pitch"
)

// Kind classifies a source line.
type Kind int

// Line kinds.
const (
	Lyric Kind = iota
	DirectiveLine
	Comment
	Blank
)

// String returns the kind name used in render contexts.
func (k Kind) String() string {
	switch k {
	case DirectiveLine:
		return "directive"
	case Comment:
		return "comment"
	case Blank:
		return "blank"
	default:
		return "lyric"
	}
}

// Placement anchors a chord (or a free-text annotation) at a byte offset
// of the line's lyric text.
type Placement struct {
	Offset     int
	Chord      pitch.Chord
	Annotation string // set for [*text] markers; Chord is then zero
	Source     string // marker content as written
}

// IsAnnotation reports whether p carries text instead of a chord.
func (p Placement) IsAnnotation() bool {
	return p.Annotation != ""
}

// Directive is a {key: value} annotation. Key is lowercase with aliases
// resolved; Name is the key as written. Known is false for keys outside
// the recognized set, which are passed through untouched.
type Directive struct {
	Key   string
	Name  string
	Value string
	Known bool
}

// Line is one source line. For lyric lines Text is the lyric with every
// chord marker removed and Placements are ordered by Offset, ties kept in
// source order.
type Line struct {
	Kind       Kind
	Number     int // 1-based source line number
	Text       string
	Placements []Placement
	Directive  Directive // set when Kind == DirectiveLine
	Section    string    // "chorus", "verse", "bridge", "tab" or ""
	Transpose  int       // in-song transposition in effect
	Notation   string    // notation system the chords were read in

	// SectionNumber numbers verses and choruses from 1; it is 0 for other
	// sections, labelled sections and a song's only chorus.
	SectionNumber int
	SectionLabel  string
	// ChorusRef is the chorus a {chorus} line repeats, 0 when the song
	// has a single chorus or none.
	ChorusRef int
}

// Segment is a run of lyric text with the chords anchored at its start.
type Segment struct {
	Text       string
	Placements []Placement
}

// Segments splits the lyric text at placement offsets. Concatenating the
// segment texts gives Text back exactly.
func (l Line) Segments() []Segment {
	if len(l.Placements) == 0 {
		return []Segment{{Text: l.Text}}
	}

	var segs []Segment
	if first := l.Placements[0].Offset; first > 0 {
		segs = append(segs, Segment{Text: l.Text[:first]})
	}

	for i := 0; i < len(l.Placements); {
		start := l.Placements[i].Offset
		j := i
		for j < len(l.Placements) && l.Placements[j].Offset == start {
			j++
		}
		end := len(l.Text)
		if j < len(l.Placements) {
			end = l.Placements[j].Offset
		}
		segs = append(segs, Segment{
			Text:       l.Text[start:end],
			Placements: slices.Clone(l.Placements[i:j]),
		})
		i = j
	}
	return segs
}

// HasChords reports whether any placement on the line is a chord.
func (l Line) HasChords() bool {
	for _, p := range l.Placements {
		if !p.IsAnnotation() {
			return true
		}
	}
	return false
}

func (l Line) clone() Line {
	l.Placements = slices.Clone(l.Placements)
	for i, p := range l.Placements {
		if p.Chord.Bass != nil {
			bass := *p.Chord.Bass
			l.Placements[i].Chord.Bass = &bass
		}
	}
	return l
}
