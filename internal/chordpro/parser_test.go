package chordpro

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-songbook/internal/pitch"
	"github.com/alnah/go-songbook/internal/song"
)

func mustParse(t *testing.T, src string, opts ...Option) *song.Document {
	t.Helper()
	doc, err := Parse([]byte(src), "test.cho", opts...)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	return doc
}

func TestParseLyricLine(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "[Am]Hello [C]world\n")
	if doc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", doc.Len())
	}

	line := doc.Line(0)
	if line.Kind != song.Lyric {
		t.Errorf("Kind = %v, want lyric", line.Kind)
	}
	if line.Text != "Hello world" {
		t.Errorf("Text = %q, want %q", line.Text, "Hello world")
	}

	var got []int
	for _, p := range line.Placements {
		got = append(got, p.Offset)
	}
	if diff := cmp.Diff([]int{0, 6}, got); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTransposeEndToEnd(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "{key: C}\n[Am]Hello [C]world\n")

	up2 := doc.WithTransposition(2, pitch.MustLookup(pitch.English))
	var names []string
	var text strings.Builder
	for _, seg := range up2.Lines()[1].Segments {
		text.WriteString(seg.Text)
		for _, c := range seg.Chords {
			names = append(names, c.Name)
		}
	}
	if diff := cmp.Diff([]string{"Bm", "D"}, names); diff != "" {
		t.Errorf("chords mismatch (-want +got):\n%s", diff)
	}
	if text.String() != "Hello world" {
		t.Errorf("lyric = %q, want %q", text.String(), "Hello world")
	}

	up7 := doc.WithTransposition(7, pitch.MustLookup(pitch.English))
	if got := up7.Lines()[0].Directive.Value; got != "G" {
		t.Errorf("key directive under +7 = %q, want G", got)
	}
}

func TestParseLyricPreservation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no chords", input: "just words", want: "just words"},
		{name: "chord mid word", input: "Hal[G]le[D/F#]lu", want: "Hallelu"},
		{name: "adjacent chords", input: "[C][G]la", want: "la"},
		{name: "trailing chord", input: "end[E7]", want: "end"},
		{name: "leading spaces kept", input: "  [C]indented", want: "  indented"},
		{name: "unicode lyric", input: "[C]héllo [G]wörld ♪", want: "héllo wörld ♪"},
		{name: "annotation", input: "[*Coda]fin", want: "fin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := mustParse(t, tt.input).Line(0)
			if line.Text != tt.want {
				t.Errorf("Text = %q, want %q", line.Text, tt.want)
			}

			var joined string
			for _, seg := range line.Segments() {
				joined += seg.Text
			}
			if joined != tt.want {
				t.Errorf("segments join to %q, want %q", joined, tt.want)
			}

			prev := 0
			for _, p := range line.Placements {
				if p.Offset < prev || p.Offset > len(line.Text) {
					t.Errorf("offset %d out of order or bounds (prev %d, len %d)", p.Offset, prev, len(line.Text))
				}
				prev = p.Offset
			}
		})
	}
}

func TestParseLineKinds(t *testing.T) {
	t.Parallel()

	src := "{title: Song}\n# a comment\n\n[C]la\n"
	doc := mustParse(t, src)

	want := []song.Kind{song.DirectiveLine, song.Comment, song.Blank, song.Lyric}
	var got []song.Kind
	for _, l := range doc.Lines() {
		got = append(got, l.Kind)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Line(1).Text; got != "a comment" {
		t.Errorf("comment text = %q", got)
	}
}

func TestParseMetadata(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"{t: First}",
		"{title: Second}",
		"{st: Sub one}",
		"{subtitle: Sub two}",
		"{artist: Someone}",
		"{key: Am}",
		"{key: C}",
		"{custom: foo}",
	}, "\n")
	doc := mustParse(t, src)

	if doc.Title() != "First" {
		t.Errorf("Title() = %q, want First", doc.Title())
	}
	if diff := cmp.Diff([]string{"Sub one", "Sub two"}, doc.Subtitles()); diff != "" {
		t.Errorf("subtitles mismatch (-want +got):\n%s", diff)
	}
	if doc.Artist() != "Someone" {
		t.Errorf("Artist() = %q", doc.Artist())
	}
	if doc.Key() != "Am" {
		t.Errorf("Key() = %q, want Am (first wins)", doc.Key())
	}

	opaque := doc.Opaque()
	want := []song.Directive{{Key: "custom", Name: "custom", Value: "foo"}}
	if diff := cmp.Diff(want, opaque); diff != "" {
		t.Errorf("opaque mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFallbackTitle(t *testing.T) {
	t.Parallel()

	if got := mustParse(t, "[C]la").Title(); got != song.FallbackTitle {
		t.Errorf("Title() = %q, want %q", got, song.FallbackTitle)
	}
}

func TestParseDirectiveAliases(t *testing.T) {
	t.Parallel()

	src := "{SOC}\n[C]la\n{Eoc}\n"
	doc := mustParse(t, src)

	dirs := doc.Directives()
	if dirs[0].Key != KeyStartOfChorus || dirs[0].Name != "SOC" || !dirs[0].Known {
		t.Errorf("first directive = %+v", dirs[0])
	}
	if dirs[1].Key != KeyEndOfChorus {
		t.Errorf("second directive key = %q", dirs[1].Key)
	}
}

func TestParseSections(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"[C]intro",
		"{start_of_chorus}",
		"[F]chorus",
		"{end_of_chorus}",
		"{sov}",
		"[G]open verse",
	}, "\n")
	doc := mustParse(t, src)

	want := []string{"", "chorus", "chorus", "chorus", "verse", "verse"}
	var got []string
	for _, l := range doc.Lines() {
		got = append(got, l.Section)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTabSectionKeepsBrackets(t *testing.T) {
	t.Parallel()

	src := "{sot}\ne|--[x]--|\n{eot}\n"
	line := mustParse(t, src).Line(1)
	if line.Text != "e|--[x]--|" {
		t.Errorf("Text = %q, want raw tab line", line.Text)
	}
	if len(line.Placements) != 0 {
		t.Errorf("got %d placements in tab section", len(line.Placements))
	}
}

func TestParseTransposeDirective(t *testing.T) {
	t.Parallel()

	src := "[C]one\n{transpose: +2}\n[C]two\n{transpose: -1}\n[C]three\n"
	doc := mustParse(t, src)
	view := doc.WithTransposition(0, pitch.MustLookup(pitch.English))

	var got []string
	for _, l := range view.Lines() {
		if l.Kind != song.Lyric {
			continue
		}
		got = append(got, l.Segments[0].Chords[0].Name)
	}
	if diff := cmp.Diff([]string{"C", "D", "B"}, got); diff != "" {
		t.Errorf("chords mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNotationDirective(t *testing.T) {
	t.Parallel()

	src := "{notation: german}\n[H]la [B]li\n"
	doc := mustParse(t, src)
	view := doc.WithTransposition(0, pitch.MustLookup(pitch.English))

	var got []string
	for _, seg := range view.Lines()[1].Segments {
		for _, c := range seg.Chords {
			got = append(got, c.Name)
		}
	}
	if diff := cmp.Diff([]string{"B", "A#"}, got); diff != "" {
		t.Errorf("chords mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLineEndingsAndBOM(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "\ufeff{title: X}\r\n[C]a\rb\n")
	if doc.Title() != "X" {
		t.Errorf("Title() = %q, want X", doc.Title())
	}
	if doc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", doc.Len())
	}
	if got := doc.Line(2).Text; got != "b" {
		t.Errorf("line 3 text = %q, want b", got)
	}
}

func TestParseCustomSyntax(t *testing.T) {
	t.Parallel()

	syn := Syntax{DirectiveOpen: "<<", DirectiveClose: ">>", ChordOpen: "(", ChordClose: ")", CommentPrefix: "%"}
	doc := mustParse(t, "<<title: Alt>>\n% note\n(G)sing [not a chord]\n", WithSyntax(syn))

	if doc.Title() != "Alt" {
		t.Errorf("Title() = %q, want Alt", doc.Title())
	}
	line := doc.Line(2)
	if line.Text != "sing [not a chord]" {
		t.Errorf("Text = %q", line.Text)
	}
	if len(line.Placements) != 1 {
		t.Errorf("got %d placements, want 1", len(line.Placements))
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
		wantCol  int
	}{
		{name: "unterminated directive", input: "{title: X", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "trailing text", input: "{title: X} extra", wantErr: ErrParse, wantLine: 1, wantCol: 11},
		{name: "empty key", input: "{: x}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "unterminated marker", input: "ok\nla [Am la", wantErr: ErrParse, wantLine: 2, wantCol: 4},
		{name: "empty marker", input: "la []", wantErr: ErrParse, wantLine: 1, wantCol: 4},
		{name: "empty annotation", input: "[*]", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "bad transpose", input: "{transpose: up}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "unknown notation", input: "{notation: klingon}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "end without start", input: "{eoc}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "mismatched end", input: "{sov}\n  {eoc}", wantErr: ErrParse, wantLine: 2, wantCol: 3},
		{name: "malformed chord", input: "é [Xm]la", wantErr: pitch.ErrMalformedChord, wantLine: 1, wantCol: 3},
		{name: "chorus inside verse", input: "{sov}\nla\n{soc}", wantErr: ErrParse, wantLine: 3, wantCol: 1},
		{name: "verse inside verse", input: "{sov}\n{sov}", wantErr: ErrParse, wantLine: 2, wantCol: 1},
		{name: "undefined chorus", input: "{soc}\nla\n{eoc}\n{chorus: 2}", wantErr: ErrParse, wantLine: 4, wantCol: 1},
		{name: "chorus zero", input: "{chorus: 0}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
		{name: "unknown alt notation", input: "{alt_notation: klingon}", wantErr: ErrParse, wantLine: 1, wantCol: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input), "bad.cho")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Line != tt.wantLine || pe.Column != tt.wantCol {
				t.Errorf("location = %d:%d, want %d:%d", pe.Line, pe.Column, tt.wantLine, tt.wantCol)
			}
			if pe.Path != "bad.cho" {
				t.Errorf("Path = %q", pe.Path)
			}
		})
	}
}

func TestParseMalformedChordIsNotParseError(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("[Q]x"), "a.cho")
	if errors.Is(err, ErrParse) {
		t.Error("malformed chord should not match ErrParse")
	}
	var mc *pitch.MalformedChordError
	if !errors.As(err, &mc) || mc.Text != "Q" {
		t.Errorf("error = %v, want MalformedChordError for Q", err)
	}
}

func TestParseInvalidSyntax(t *testing.T) {
	t.Parallel()

	syn := DefaultSyntax()
	syn.CommentPrefix = "{"
	_, err := Parse([]byte("x"), "a.cho", WithSyntax(syn))
	if !errors.Is(err, ErrInvalidSyntax) {
		t.Errorf("error = %v, want ErrInvalidSyntax", err)
	}
}

func TestParseUnknownInitialNotation(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("x"), "a.cho", WithNotation("nope"))
	if !errors.Is(err, ErrParse) || !errors.Is(err, pitch.ErrUnknownNotation) {
		t.Errorf("error = %v, want ErrParse wrapping ErrUnknownNotation", err)
	}
}

func TestParseNestedSectionMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "chorus in verse", input: "{start_of_verse}\n{start_of_chorus}", want: "start_of_chorus inside open verse section"},
		{name: "alias in chorus", input: "{soc}\n{sob}", want: "sob inside open chorus section"},
		{name: "tab in bridge", input: "{sob}\n{sot}", want: "sot inside open bridge section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input), "nested.cho")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if !strings.Contains(pe.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", pe.Error(), tt.want)
			}
		})
	}
}

func TestParseSectionNumbering(t *testing.T) {
	t.Parallel()

	type numbered struct {
		Key    string
		Number int
		Label  string
		Ref    int
	}

	tests := []struct {
		name  string
		input string
		want  []numbered
	}{
		{
			name:  "verses and choruses count separately",
			input: "{sov}\n{eov}\n{soc}\n{eoc}\n{sov}\n{eov}\n{soc}\n{eoc}",
			want: []numbered{
				{Key: KeyStartOfVerse, Number: 1},
				{Key: KeyStartOfChorus, Number: 1},
				{Key: KeyStartOfVerse, Number: 2},
				{Key: KeyStartOfChorus, Number: 2},
			},
		},
		{
			name:  "single chorus stays unnumbered",
			input: "{sov}\n{eov}\n{soc}\n{eoc}\n{chorus}",
			want: []numbered{
				{Key: KeyStartOfVerse, Number: 1},
				{Key: KeyStartOfChorus},
				{Key: KeyChorus},
			},
		},
		{
			name:  "explicit number moves the counter",
			input: "{sov: 3}\n{eov}\n{sov}\n{eov}",
			want: []numbered{
				{Key: KeyStartOfVerse, Number: 3},
				{Key: KeyStartOfVerse, Number: 4},
			},
		},
		{
			name:  "label is not numbered",
			input: "{sov: Intro}\n{eov}\n{sov}\n{eov}\n{sob: Middle}\n{eob}",
			want: []numbered{
				{Key: KeyStartOfVerse, Label: "Intro"},
				{Key: KeyStartOfVerse, Number: 1},
				{Key: KeyStartOfBridge, Label: "Middle"},
			},
		},
		{
			name:  "references resolve to choruses",
			input: "{chorus}\n{soc}\n{eoc}\n{soc}\n{eoc}\n{chorus}\n{chorus: 1}",
			want: []numbered{
				{Key: KeyChorus, Ref: 1},
				{Key: KeyStartOfChorus, Number: 1},
				{Key: KeyStartOfChorus, Number: 2},
				{Key: KeyChorus, Ref: 2},
				{Key: KeyChorus, Ref: 1},
			},
		},
		{
			name:  "reference without choruses",
			input: "{chorus}",
			want:  []numbered{{Key: KeyChorus}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := mustParse(t, tt.input)
			var got []numbered
			for i := 0; i < doc.Len(); i++ {
				l := doc.Line(i)
				if l.Kind != song.DirectiveLine {
					continue
				}
				switch l.Directive.Key {
				case KeyStartOfVerse, KeyStartOfChorus, KeyStartOfBridge, KeyChorus:
					got = append(got, numbered{Key: l.Directive.Key, Number: l.SectionNumber, Label: l.SectionLabel, Ref: l.ChorusRef})
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("numbering mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSectionNumberOnLyrics(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "{sov}\nfirst\n{eov}\nbetween\n{sov}\nsecond\n{eov}")
	want := map[string]int{"first": 1, "between": 0, "second": 2}
	for i := 0; i < doc.Len(); i++ {
		l := doc.Line(i)
		if l.Kind != song.Lyric {
			continue
		}
		if l.SectionNumber != want[l.Text] {
			t.Errorf("%q SectionNumber = %d, want %d", l.Text, l.SectionNumber, want[l.Text])
		}
	}
}

func TestParseAltNotationDirective(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "{alt_notation: german}\n{alt_notation: czech}\n[Bm]la")
	if got := doc.AltNotation(); got != pitch.German {
		t.Errorf("AltNotation() = %q, want %q", got, pitch.German)
	}
	if !doc.Line(0).Directive.Known {
		t.Error("alt_notation should be a known directive")
	}
}
