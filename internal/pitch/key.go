package pitch

import "strings"

// Key is a key signature: a tonic and a mode.
type Key struct {
	Tonic Note `json:"tonic"`
	Minor bool `json:"minor,omitempty"`
}

// Major and minor keys conventionally written with flats.
var (
	flatMajors = map[int]bool{5: true, 10: true, 3: true, 8: true, 1: true}
	flatMinors = map[int]bool{2: true, 7: true, 0: true, 5: true, 10: true, 3: true}
)

// minorMarkers are the extensions read as a minor key.
var minorMarkers = map[string]bool{"m": true, "min": true, "minor": true, "-": true}

// majorMarkers are the extensions read as a major key. "M" is matched
// case-sensitively since "m" means minor.
var majorMarkers = map[string]bool{"": true, "maj": true, "major": true}

// ParseKey reads a key such as "C", "Am", "F# minor" or "Bb".
func ParseKey(s string, sys *NotationSystem) (Key, error) {
	sym, ok := sys.parseSymbol(strings.TrimSpace(s))
	if !ok {
		return Key{}, &UnrecognizedPitchError{Text: s, System: sys.name}
	}
	root := sym.root
	mode := strings.TrimSpace(sym.rest)
	switch {
	case mode == "M" || majorMarkers[strings.ToLower(mode)]:
		return Key{Tonic: root}, nil
	case minorMarkers[strings.ToLower(mode)]:
		return Key{Tonic: root, Minor: true}, nil
	}
	return Key{}, &UnrecognizedPitchError{Text: s, System: sys.name}
}

// TransposeKey shifts the tonic of k by semitones.
func TransposeKey(k Key, semitones int) Key {
	return Key{Tonic: Transpose(k.Tonic, semitones), Minor: k.Minor}
}

// SpellKey renders k in sys, e.g. "Bb" or "F#m".
func SpellKey(k Key, sys *NotationSystem) string {
	s := Spell(k.Tonic, sys)
	if k.Minor {
		s += "m"
	}
	return s
}

// PrefersFlats reports whether k is conventionally written with flats.
func (k Key) PrefersFlats() bool {
	c := mod12(k.Tonic.Class)
	if k.Minor {
		return flatMinors[c]
	}
	return flatMajors[c]
}

// ResolvePreference turns PreferAuto into a concrete preference for k.
// Other preferences are returned unchanged.
func ResolvePreference(p Preference, k Key) Preference {
	if p != PreferAuto {
		return p
	}
	if k.PrefersFlats() {
		return PreferFlat
	}
	return PreferSharp
}
