package chordpro

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-songbook/internal/pitch"
	"github.com/alnah/go-songbook/internal/song"
)

const bom = "\ufeff"

// Option configures Parse.
type Option func(*parser)

// WithSyntax sets the delimiters. Empty fields keep their defaults.
func WithSyntax(s Syntax) Option {
	return func(p *parser) {
		p.syntax = s.WithDefaults()
	}
}

// WithNotation sets the notation system chords are read in until a
// notation directive switches it.
func WithNotation(name string) Option {
	return func(p *parser) {
		p.notationName = name
	}
}

// parser holds the state carried from line to line.
type parser struct {
	syntax       Syntax
	notationName string
	path         string

	notation  *pitch.NotationSystem
	transpose int

	section       string
	sectionNumber int
	sectionLabel  string
	verses        int
	choruses      int
	lastChorus    int
	refs          []chorusRef

	meta       song.Meta
	lines      []song.Line
	directives []song.Directive
	hasTitle   bool
	hasArtist  bool
	hasKey     bool
}

// chorusRef is a {chorus} line waiting for the song's chorus count.
type chorusRef struct {
	line     int // index into lines
	column   int
	explicit bool
}

// Parse reads one song. path is recorded on the document and in errors;
// it is not opened. The first error aborts the song.
func Parse(src []byte, path string, opts ...Option) (*song.Document, error) {
	p := &parser{
		syntax:       DefaultSyntax(),
		notationName: pitch.DefaultNotation,
		path:         path,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.syntax.Validate(); err != nil {
		return nil, err
	}

	sys, err := pitch.Lookup(p.notationName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	p.notation = sys
	p.meta = song.Meta{Path: path, Notation: sys.Name()}

	for i, raw := range splitLines(src) {
		if err := p.line(i+1, raw); err != nil {
			return nil, err
		}
	}
	if err := p.resolveChoruses(); err != nil {
		return nil, err
	}

	return song.New(p.meta, p.lines, p.directives), nil
}

// splitLines normalizes line endings, drops a leading BOM and splits.
// A trailing newline does not produce an extra empty line.
func splitLines(src []byte) []string {
	text := strings.TrimPrefix(string(src), bom)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (p *parser) line(number int, raw string) error {
	trimmed := strings.TrimSpace(raw)
	base := song.Line{
		Number:        number,
		Section:       p.section,
		Transpose:     p.transpose,
		Notation:      p.notation.Name(),
		SectionNumber: p.sectionNumber,
		SectionLabel:  p.sectionLabel,
	}

	switch {
	case trimmed == "":
		base.Kind = song.Blank
		p.lines = append(p.lines, base)
		return nil

	case strings.HasPrefix(trimmed, p.syntax.CommentPrefix):
		base.Kind = song.Comment
		base.Text = strings.TrimSpace(strings.TrimPrefix(trimmed, p.syntax.CommentPrefix))
		p.lines = append(p.lines, base)
		return nil

	case strings.HasPrefix(trimmed, p.syntax.DirectiveOpen):
		return p.directive(base, raw)

	case p.section == "tab":
		base.Kind = song.Lyric
		base.Text = raw
		p.lines = append(p.lines, base)
		return nil
	}

	base.Kind = song.Lyric
	text, placements, err := p.lyric(number, raw)
	if err != nil {
		return err
	}
	base.Text = text
	base.Placements = placements
	p.lines = append(p.lines, base)
	return nil
}

func (p *parser) directive(base song.Line, raw string) error {
	open := strings.Index(raw, p.syntax.DirectiveOpen)
	col := column(raw, open)
	bodyStart := open + len(p.syntax.DirectiveOpen)

	end := strings.Index(raw[bodyStart:], p.syntax.DirectiveClose)
	if end < 0 {
		return p.errorf(base.Number, col, "unterminated directive")
	}
	body := raw[bodyStart : bodyStart+end]
	after := bodyStart + end + len(p.syntax.DirectiveClose)
	if rest := strings.TrimSpace(raw[after:]); rest != "" {
		return p.errorf(base.Number, column(raw, after), "unexpected text %q after directive", rest)
	}

	name, value, _ := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return p.errorf(base.Number, col, "directive has no key")
	}

	key, isKnown := Canonical(name)
	dir := song.Directive{Key: key, Name: name, Value: value, Known: isKnown}

	if err := p.apply(&base, dir, col); err != nil {
		return err
	}

	base.Kind = song.DirectiveLine
	base.Directive = dir
	p.lines = append(p.lines, base)
	p.directives = append(p.directives, dir)
	return nil
}

// apply updates parser state and song metadata for a recognized
// directive. base is the directive's own line.
func (p *parser) apply(base *song.Line, dir song.Directive, col int) error {
	if !dir.Known {
		return nil
	}

	if name, ok := sectionStarts[dir.Key]; ok {
		if p.section != "" {
			return p.errorf(base.Number, col, "%s inside open %s section", dir.Name, p.section)
		}
		p.section = name
		p.sectionNumber, p.sectionLabel = p.numberSection(name, dir.Value)
		base.Section, base.SectionNumber, base.SectionLabel = p.section, p.sectionNumber, p.sectionLabel
		return nil
	}
	if name, ok := sectionEnds[dir.Key]; ok {
		if p.section != name {
			if p.section == "" {
				return p.errorf(base.Number, col, "%s without open %s section", dir.Name, name)
			}
			return p.errorf(base.Number, col, "%s inside open %s section", dir.Name, p.section)
		}
		p.section, p.sectionNumber, p.sectionLabel = "", 0, ""
		return nil
	}

	switch dir.Key {
	case KeyTitle:
		if !p.hasTitle {
			p.meta.Title = dir.Value
			p.hasTitle = dir.Value != ""
		}
	case KeySubtitle:
		if dir.Value != "" {
			p.meta.Subtitles = append(p.meta.Subtitles, dir.Value)
		}
	case KeyArtist:
		if !p.hasArtist {
			p.meta.Artist = dir.Value
			p.hasArtist = dir.Value != ""
		}
	case KeyKey:
		if !p.hasKey && dir.Value != "" {
			p.meta.Key = dir.Value
			p.meta.KeyNotation = p.notation.Name()
			p.meta.KeyTranspose = p.transpose
			p.hasKey = true
		}
	case KeyTranspose:
		n, err := parseSemitones(dir.Value)
		if err != nil {
			return p.errorf(base.Number, col, "transpose value %q is not a whole number of semitones", dir.Value)
		}
		p.transpose = n
	case KeyNotation:
		sys, err := pitch.Lookup(dir.Value)
		if err != nil {
			return p.errorf(base.Number, col, "%v", err)
		}
		p.notation = sys
	case KeyAltNotation:
		sys, err := pitch.Lookup(dir.Value)
		if err != nil {
			return p.errorf(base.Number, col, "%v", err)
		}
		if p.meta.AltNotation == "" {
			p.meta.AltNotation = sys.Name()
		}
	case KeyChorus:
		ref := chorusRef{line: len(p.lines), column: col}
		if n, err := strconv.Atoi(dir.Value); err == nil {
			if n < 1 {
				return p.errorf(base.Number, col, "chorus number %d must be positive", n)
			}
			ref.explicit = true
			base.ChorusRef = n
		} else {
			base.ChorusRef = p.lastChorus
		}
		p.refs = append(p.refs, ref)
	}
	return nil
}

// numberSection numbers verses and choruses. An empty value takes the
// next number, a whole number sets it and anything else is a label.
func (p *parser) numberSection(name, value string) (int, string) {
	var counter *int
	switch name {
	case "verse":
		counter = &p.verses
	case "chorus":
		counter = &p.choruses
	default:
		return 0, value
	}

	number := 0
	if value == "" {
		number = *counter + 1
	} else if n, err := strconv.Atoi(value); err == nil && n > 0 {
		number = n
	} else {
		return 0, value
	}
	*counter = max(*counter, number)
	if name == "chorus" {
		p.lastChorus = number
	}
	return number, ""
}

// resolveChoruses checks chorus references once every chorus is known.
// A song with a single chorus leaves it and its references unnumbered.
func (p *parser) resolveChoruses() error {
	for _, ref := range p.refs {
		l := &p.lines[ref.line]
		if ref.explicit && l.ChorusRef > p.choruses {
			return p.errorf(l.Number, ref.column, "chorus %d is not defined", l.ChorusRef)
		}
		if !ref.explicit && l.ChorusRef == 0 && p.choruses > 0 {
			l.ChorusRef = 1
		}
	}
	if p.choruses > 1 {
		return nil
	}
	for i := range p.lines {
		if p.lines[i].Section == "chorus" {
			p.lines[i].SectionNumber = 0
		}
		p.lines[i].ChorusRef = 0
	}
	return nil
}

// lyric strips chord markers from raw and records their placements.
func (p *parser) lyric(number int, raw string) (string, []song.Placement, error) {
	open, closeDelim := p.syntax.ChordOpen, p.syntax.ChordClose

	var (
		text       strings.Builder
		placements []song.Placement
	)
	pos := 0
	for {
		i := strings.Index(raw[pos:], open)
		if i < 0 {
			text.WriteString(raw[pos:])
			break
		}
		start := pos + i
		text.WriteString(raw[pos:start])

		bodyStart := start + len(open)
		j := strings.Index(raw[bodyStart:], closeDelim)
		if j < 0 {
			return "", nil, p.errorf(number, column(raw, start), "unterminated chord marker")
		}
		body := raw[bodyStart : bodyStart+j]
		pos = bodyStart + j + len(closeDelim)

		pl, err := p.marker(number, column(raw, start), body)
		if err != nil {
			return "", nil, err
		}
		pl.Offset = text.Len()
		placements = append(placements, pl)
	}
	return text.String(), placements, nil
}

func (p *parser) marker(number, col int, body string) (song.Placement, error) {
	content := strings.TrimSpace(body)
	if content == "" {
		return song.Placement{}, p.errorf(number, col, "empty chord marker")
	}

	if rest, ok := strings.CutPrefix(content, p.syntax.AnnotationPrefix); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return song.Placement{}, p.errorf(number, col, "empty annotation")
		}
		return song.Placement{Annotation: rest, Source: body}, nil
	}

	c, err := pitch.ParseChord(content, p.notation)
	if err != nil {
		return song.Placement{}, &ParseError{Path: p.path, Line: number, Column: col, Err: err}
	}
	return song.Placement{Chord: c, Source: body}, nil
}

func (p *parser) errorf(line, col int, format string, args ...any) error {
	return &ParseError{
		Path:   p.path,
		Line:   line,
		Column: col,
		Reason: fmt.Sprintf(format, args...),
	}
}

// column converts a byte index of s into a 1-based rune column.
func column(s string, byteIndex int) int {
	return utf8.RuneCountInString(s[:byteIndex]) + 1
}

func parseSemitones(v string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(v), "+"))
}
