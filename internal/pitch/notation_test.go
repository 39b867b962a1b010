package pitch

import (
	"errors"
	"testing"
)

func TestSpell_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range Systems() {
		sys := MustLookup(name)
		for class := 0; class < Semitones; class++ {
			for _, acc := range []Accidental{Natural, Sharp, Flat} {
				n := NewNote(class, acc)
				text := Spell(n, sys)
				if text == "" {
					t.Fatalf("%s: Spell(%d) is empty", name, class)
				}
				got, err := ParseNote(text, sys)
				if err != nil {
					t.Fatalf("%s: ParseNote(Spell(%d) = %q) error: %v", name, class, text, err)
				}
				if got.Class != n.Class {
					t.Errorf("%s: ParseNote(%q).Class = %d, want %d", name, text, got.Class, n.Class)
				}
			}
		}
	}
}

func TestSpell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		system string
		note   Note
		want   string
	}{
		{system: English, note: NewNote(1, Flat), want: "C#"},
		{system: EnglishFlat, note: NewNote(1, Sharp), want: "Db"},
		{system: EnglishAuto, note: NewNote(10, Flat), want: "Bb"},
		{system: EnglishAuto, note: NewNote(10, Sharp), want: "A#"},
		{system: EnglishAuto, note: NewNote(10, Natural), want: "A#"},
		{system: German, note: NewNote(10, Natural), want: "B"},
		{system: German, note: NewNote(11, Natural), want: "H"},
		{system: German, note: NewNote(6, Natural), want: "Fis"},
		{system: Solfege, note: NewNote(7, Natural), want: "Sol"},
		{system: SolfegeFlat, note: NewNote(3, Natural), want: "Mib"},
	}

	for _, tt := range tests {
		t.Run(tt.system+"/"+tt.want, func(t *testing.T) {
			t.Parallel()

			got := Spell(tt.note, MustLookup(tt.system))
			if got != tt.want {
				t.Errorf("Spell(%v, %s) = %q, want %q", tt.note, tt.system, got, tt.want)
			}
		})
	}
}

func TestParseNote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		system  string
		input   string
		want    int
		wantAcc Accidental
		wantErr error
	}{
		{name: "natural", system: English, input: "E", want: 4, wantAcc: Natural},
		{name: "lowercase", system: English, input: "f#", want: 6, wantAcc: Sharp},
		{name: "flat", system: English, input: "Bb", want: 10, wantAcc: Flat},
		{name: "unicode sharp", system: English, input: "C♯", want: 1, wantAcc: Sharp},
		{name: "unicode flat", system: English, input: "E♭", want: 3, wantAcc: Flat},
		{name: "enharmonic alias", system: English, input: "Cb", want: 11, wantAcc: Flat},
		{name: "surrounding space", system: English, input: "  A ", want: 9, wantAcc: Natural},
		{name: "german H", system: German, input: "h", want: 11, wantAcc: Natural},
		{name: "german B", system: German, input: "B", want: 10, wantAcc: Natural},
		{name: "german es", system: German, input: "Es", want: 3, wantAcc: Flat},
		{name: "solfege", system: Solfege, input: "SOL#", want: 8, wantAcc: Sharp},
		{name: "unknown letter", system: English, input: "X", wantErr: ErrUnrecognizedPitch},
		{name: "german has no Bb", system: German, input: "Bb", wantErr: ErrUnrecognizedPitch},
		{name: "letter in solfege", system: Solfege, input: "C", wantErr: ErrUnrecognizedPitch},
		{name: "empty", system: English, input: "", wantErr: ErrUnrecognizedPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseNote(tt.input, MustLookup(tt.system))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseNote(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				var pe *UnrecognizedPitchError
				if !errors.As(err, &pe) {
					t.Fatalf("ParseNote(%q) error type = %T, want *UnrecognizedPitchError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNote(%q) unexpected error: %v", tt.input, err)
			}
			if got.Class != tt.want || got.Accidental != tt.wantAcc {
				t.Errorf("ParseNote(%q) = %+v, want class %d %v", tt.input, got, tt.want, tt.wantAcc)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("empty name selects default", func(t *testing.T) {
		t.Parallel()

		sys, err := Lookup("")
		if err != nil {
			t.Fatalf("Lookup(\"\") error: %v", err)
		}
		if sys.Name() != DefaultNotation {
			t.Errorf("Lookup(\"\").Name() = %q, want %q", sys.Name(), DefaultNotation)
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		t.Parallel()

		sys, err := Lookup("German")
		if err != nil {
			t.Fatalf("Lookup(German) error: %v", err)
		}
		if sys.Name() != German {
			t.Errorf("Lookup(German).Name() = %q", sys.Name())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := Lookup("klingon")
		if !errors.Is(err, ErrUnknownNotation) {
			t.Errorf("Lookup(klingon) error = %v, want ErrUnknownNotation", err)
		}
	})
}

func TestWithPreference(t *testing.T) {
	t.Parallel()

	sys := MustLookup(EnglishAuto)

	if got := sys.WithPreference(PreferFlat); got.Name() != EnglishFlat {
		t.Errorf("WithPreference(flat).Name() = %q, want %q", got.Name(), EnglishFlat)
	}
	if got := sys.WithPreference(PreferSharp); got.Name() != English {
		t.Errorf("WithPreference(sharp).Name() = %q, want %q", got.Name(), English)
	}

	german := MustLookup(German).WithPreference(PreferFlat)
	if got := Spell(NewNote(3, Natural), german); got != "Es" {
		t.Errorf("german flat Spell(3) = %q, want Es", got)
	}
}
