package song

import (
	"path/filepath"
	"slices"

	"github.com/google/uuid"
)

// FallbackTitle names songs without a title directive.
const FallbackTitle = "Untitled"

// Meta is the song-level metadata gathered while parsing.
type Meta struct {
	Path      string
	Title     string
	Subtitles []string
	Artist    string
	Key       string // first key directive value, as written
	Notation  string // notation system in effect at the start of the song
	// AltNotation is the secondary system chords are also shown in, from
	// the first alt_notation directive.
	AltNotation string

	// Notation and in-song transposition in effect at the key directive.
	KeyNotation  string
	KeyTranspose int
}

// Document is a parsed song. It is never modified after New returns.
type Document struct {
	id         string
	meta       Meta
	directives []Directive
	lines      []Line
}

// New builds a Document, taking copies of lines and directives.
func New(meta Meta, lines []Line, directives []Directive) *Document {
	if meta.Title == "" {
		meta.Title = FallbackTitle
	}
	meta.Subtitles = slices.Clone(meta.Subtitles)

	d := &Document{
		id:         NewID(meta.Path),
		meta:       meta,
		directives: slices.Clone(directives),
		lines:      make([]Line, len(lines)),
	}
	for i, l := range lines {
		d.lines[i] = l.clone()
	}
	return d
}

// NewID derives the stable identifier of the song stored at path.
func NewID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("songbook:"+filepath.ToSlash(path))).String()
}

// ID returns the stable song identifier.
func (d *Document) ID() string { return d.id }

// Path returns the source path.
func (d *Document) Path() string { return d.meta.Path }

// Title returns the song title.
func (d *Document) Title() string { return d.meta.Title }

// Subtitles returns the subtitle directives in order.
func (d *Document) Subtitles() []string { return slices.Clone(d.meta.Subtitles) }

// Artist returns the artist directive value.
func (d *Document) Artist() string { return d.meta.Artist }

// Key returns the original key as written, or "".
func (d *Document) Key() string { return d.meta.Key }

// Notation returns the notation system the song starts in.
func (d *Document) Notation() string { return d.meta.Notation }

// AltNotation returns the song's alternate notation system, or "".
func (d *Document) AltNotation() string { return d.meta.AltNotation }

// Meta returns a copy of the song metadata.
func (d *Document) Meta() Meta {
	m := d.meta
	m.Subtitles = slices.Clone(m.Subtitles)
	return m
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns a copy of line i.
func (d *Document) Line(i int) Line { return d.lines[i].clone() }

// Lines returns a copy of every line.
func (d *Document) Lines() []Line {
	out := make([]Line, len(d.lines))
	for i, l := range d.lines {
		out[i] = l.clone()
	}
	return out
}

// Directives returns every directive in source order.
func (d *Document) Directives() []Directive { return slices.Clone(d.directives) }

// Opaque returns the directives outside the recognized set.
func (d *Document) Opaque() []Directive {
	var out []Directive
	for _, dir := range d.directives {
		if !dir.Known {
			out = append(out, dir)
		}
	}
	return out
}

// Lookup returns the first directive with the given canonical key.
func (d *Document) Lookup(key string) (Directive, bool) {
	for _, dir := range d.directives {
		if dir.Key == key {
			return dir, true
		}
	}
	return Directive{}, false
}
