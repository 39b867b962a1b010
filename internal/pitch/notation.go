package pitch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Preference selects between the sharp and flat spelling tables of a
// notation system.
type Preference int

// Preference values.
const (
	PreferSharp Preference = iota
	PreferFlat
	// PreferAuto spells a note the way it was written (flat notes stay
	// flat), falling back to sharps. Views resolve it from the song key.
	PreferAuto
)

// Built-in notation system names.
const (
	English     = "english"
	EnglishFlat = "english-flat"
	EnglishAuto = "english-auto"
	German      = "german"
	Solfege     = "solfege"
	SolfegeFlat = "solfege-flat"
)

// DefaultNotation is used when a song or target names no system.
const DefaultNotation = English

// spelling is one accepted way of writing a pitch class.
type spelling struct {
	text  string // lowercased
	class int
	acc   Accidental
}

// NotationSystem maps pitch classes to display strings and back.
// Values are immutable; share them freely between goroutines.
type NotationSystem struct {
	name   string
	family string
	prefer Preference
	sharps [Semitones]string
	flats  [Semitones]string
	index  map[string]spelling
	// grammar reads chord and key symbols spelled in this system.
	grammar *participle.Parser[symbolGrammar]
}

// Name returns the system name used in manifests and directives.
func (s *NotationSystem) Name() string { return s.name }

// Preference returns the spelling preference of the system.
func (s *NotationSystem) Preference() Preference { return s.prefer }

// WithPreference returns the system of the same family with preference p.
// Tables are shared, not copied.
func (s *NotationSystem) WithPreference(p Preference) *NotationSystem {
	if s.prefer == p {
		return s
	}
	for _, sys := range registry {
		if sys.family == s.family && sys.prefer == p {
			return sys
		}
	}
	clone := *s
	clone.prefer = p
	return &clone
}

// Spell returns the display string of n. Every pitch class has a spelling
// in every system.
func Spell(n Note, sys *NotationSystem) string {
	c := mod12(n.Class)
	switch sys.prefer {
	case PreferFlat:
		return sys.flats[c]
	case PreferAuto:
		if n.Accidental == Flat {
			return sys.flats[c]
		}
		return sys.sharps[c]
	default:
		return sys.sharps[c]
	}
}

// ParseNote reads s as a whole note spelling, ignoring case and
// surrounding whitespace.
func ParseNote(s string, sys *NotationSystem) (Note, error) {
	sp, ok := sys.index[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Note{}, &UnrecognizedPitchError{Text: s, System: sys.name}
	}
	return Note{Class: sp.class, Accidental: sp.acc}, nil
}

// Lookup returns the built-in notation system with the given name
// (case-insensitive). An empty name selects DefaultNotation.
func Lookup(name string) (*NotationSystem, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultNotation
	}
	sys, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownNotation, name, strings.Join(Systems(), ", "))
	}
	return sys, nil
}

// MustLookup is Lookup for names known to exist. It panics otherwise.
func MustLookup(name string) *NotationSystem {
	sys, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return sys
}

// Systems returns the names of all built-in systems, sorted.
func Systems() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	letterSharps = [Semitones]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	letterFlats  = [Semitones]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
	letterExtra  = map[string]int{"Cb": 11, "Fb": 4, "E#": 5, "B#": 0}

	germanSharps = [Semitones]string{"C", "Cis", "D", "Dis", "E", "F", "Fis", "G", "Gis", "A", "B", "H"}
	germanFlats  = [Semitones]string{"C", "Des", "D", "Es", "E", "F", "Ges", "G", "As", "A", "B", "H"}
	germanExtra  = map[string]int{"Ais": 10, "Eis": 5, "His": 0, "Ces": 11, "Fes": 4}

	solfegeSharps = [Semitones]string{"Do", "Do#", "Re", "Re#", "Mi", "Fa", "Fa#", "Sol", "Sol#", "La", "La#", "Si"}
	solfegeFlats  = [Semitones]string{"Do", "Reb", "Re", "Mib", "Mi", "Fa", "Solb", "Sol", "Lab", "La", "Sib", "Si"}
	solfegeExtra  = map[string]int{"Dob": 11, "Fab": 4, "Mi#": 5, "Si#": 0, "Ut": 0}
)

var registry = map[string]*NotationSystem{
	English:     newSystem(English, "english", PreferSharp, letterSharps, letterFlats, letterExtra, true),
	EnglishFlat: newSystem(EnglishFlat, "english", PreferFlat, letterSharps, letterFlats, letterExtra, true),
	EnglishAuto: newSystem(EnglishAuto, "english", PreferAuto, letterSharps, letterFlats, letterExtra, true),
	German:      newSystem(German, "german", PreferSharp, germanSharps, germanFlats, germanExtra, false),
	Solfege:     newSystem(Solfege, "solfege", PreferSharp, solfegeSharps, solfegeFlats, solfegeExtra, true),
	SolfegeFlat: newSystem(SolfegeFlat, "solfege", PreferFlat, solfegeSharps, solfegeFlats, solfegeExtra, true),
}

func newSystem(name, family string, prefer Preference, sharps, flats [Semitones]string, extra map[string]int, symbols bool) *NotationSystem {
	sys := &NotationSystem{
		name:   name,
		family: family,
		prefer: prefer,
		sharps: sharps,
		flats:  flats,
		index:  make(map[string]spelling),
	}

	add := func(text string, class int, acc Accidental) {
		key := strings.ToLower(text)
		if _, exists := sys.index[key]; exists {
			return
		}
		sys.index[key] = spelling{text: key, class: class, acc: acc}
		if symbols {
			alt := strings.ReplaceAll(text, "#", "♯")
			if acc == Flat && len(text) > 1 && strings.HasSuffix(text, "b") {
				alt = strings.TrimSuffix(text, "b") + "♭"
			}
			if alt != text {
				sys.index[strings.ToLower(alt)] = spelling{text: strings.ToLower(alt), class: class, acc: acc}
			}
		}
	}

	for c := 0; c < Semitones; c++ {
		switch {
		case sharps[c] == flats[c]:
			add(sharps[c], c, Natural)
		default:
			add(sharps[c], c, Sharp)
			add(flats[c], c, Flat)
		}
	}

	extras := make([]string, 0, len(extra))
	for text := range extra {
		extras = append(extras, text)
	}
	sort.Strings(extras)
	for _, text := range extras {
		acc := Sharp
		lower := strings.ToLower(text)
		if strings.HasSuffix(lower, "b") || strings.HasSuffix(lower, "es") {
			acc = Flat
		}
		if lower == "ut" {
			acc = Natural
		}
		add(text, extra[text], acc)
	}

	letters, accidentals := splitSpellings(sys.index)
	sys.grammar = newSymbolParser(letters, accidentals)

	return sys
}
