package render

import (
	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/pitch"
	"github.com/alnah/go-songbook/internal/song"
)

// Program identifies the generator in every context.
type Program struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Book is the project-level metadata.
type Book struct {
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Authors     []string       `json:"authors"`
	Date        string         `json:"date,omitempty"`
	Preface     string         `json:"preface,omitempty"`      // sanitized HTML
	PrefaceText string         `json:"preface_text,omitempty"` // plain text for non-HTML targets
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Output describes the target being rendered.
type Output struct {
	Name        string         `json:"name"`
	File        string         `json:"file"`
	Format      string         `json:"format"`
	Template    string         `json:"template,omitempty"`
	Style       string         `json:"style,omitempty"`
	Notation    string         `json:"notation"`
	AltNotation string         `json:"alt_notation,omitempty"`
	Transpose   int            `json:"transpose"`
	Mode        string         `json:"mode"`
	Metadata    map[string]any `json:"metadata"`
}

// Context is the data tree handed to the template engine. Songs is set in
// book mode, Song in song mode.
type Context struct {
	Book    Book       `json:"book"`
	Songs   []SongData `json:"songs,omitempty"`
	Song    *SongData  `json:"song,omitempty"`
	TOC     []TOCEntry `json:"toc"`
	Output  Output     `json:"output"`
	Program Program    `json:"program"`
	Style   string     `json:"style,omitempty"`
}

// SongData is one song as templates see it.
type SongData struct {
	ID          string            `json:"id"`
	Number      int               `json:"number"`
	Anchor      string            `json:"anchor"`
	Title       string            `json:"title"`
	Subtitles   []string          `json:"subtitles"`
	Artist      string            `json:"artist,omitempty"`
	Key         string            `json:"key,omitempty"`
	OriginalKey string            `json:"original_key,omitempty"`
	Capo        string            `json:"capo,omitempty"`
	Tempo       string            `json:"tempo,omitempty"`
	Transpose   int               `json:"transpose"`
	Notation    string            `json:"notation"`
	AltNotation string            `json:"alt_notation,omitempty"`
	Lines       []LineData        `json:"lines"`
	Directives  map[string]string `json:"directives"`
	Opaque      []DirectiveData   `json:"opaque"`
}

// LineData is one rendered line. SectionNumber numbers verses and
// choruses; ChorusRef is the chorus a chorus directive repeats.
type LineData struct {
	Kind          string         `json:"kind"`
	Number        int            `json:"number"`
	Text          string         `json:"text"`
	Section       string         `json:"section,omitempty"`
	SectionNumber int            `json:"section_number,omitempty"`
	SectionLabel  string         `json:"section_label,omitempty"`
	ChorusRef     int            `json:"chorus_ref,omitempty"`
	HasChords     bool           `json:"has_chords"`
	Segments      []SegmentData  `json:"segments,omitempty"`
	Directive     *DirectiveData `json:"directive,omitempty"`
}

// SegmentData is lyric text with the chords above its start.
type SegmentData struct {
	Text   string      `json:"text"`
	Chords []ChordData `json:"chords,omitempty"`
}

// ChordData is a spelled chord or an annotation.
type ChordData struct {
	Name       string `json:"name"`
	Root       string `json:"root,omitempty"`
	Extension  string `json:"extension,omitempty"`
	Bass       string `json:"bass,omitempty"`
	Annotation bool   `json:"annotation,omitempty"`
	Alt        string `json:"alt,omitempty"`
}

// DirectiveData is a directive as written, with key values transposed.
type DirectiveData struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Known bool   `json:"known"`
}

// Request carries the per-target settings a context is built with.
type Request struct {
	Output   Output
	Notation *pitch.NotationSystem
	// AltNotation adds a second spelling to every chord. Nil falls back
	// to the song's alt_notation directive.
	AltNotation *pitch.NotationSystem
	// Transpose returns the semitones for one song. Nil means
	// Output.Transpose for every song.
	Transpose func(*song.Document) int
	Style     string
}

func (r Request) semitones(d *song.Document) int {
	if r.Transpose == nil {
		return r.Output.Transpose
	}
	return r.Transpose(d)
}

func (r Request) notation() *pitch.NotationSystem {
	if r.Notation == nil {
		return pitch.MustLookup(pitch.DefaultNotation)
	}
	return r.Notation
}

func (r Request) altNotation(d *song.Document) *pitch.NotationSystem {
	if r.AltNotation != nil {
		return r.AltNotation
	}
	if name := d.AltNotation(); name != "" {
		if sys, err := pitch.Lookup(name); err == nil {
			return sys
		}
	}
	return nil
}

// Builder produces contexts over one CrossRef. It holds no mutable state
// and may be shared by concurrent renders.
type Builder struct {
	xref    *CrossRef
	book    Book
	program Program
}

// NewBuilder creates a Builder.
func NewBuilder(xref *CrossRef, book Book, program Program) *Builder {
	return &Builder{xref: xref, book: book, program: program}
}

// CrossRef returns the snapshot the builder numbers songs with.
func (b *Builder) CrossRef() *CrossRef { return b.xref }

// Song builds the context of a single-song artifact.
func (b *Builder) Song(doc *song.Document, req Request) *Context {
	data := b.songData(doc, req)
	ctx := b.base(req)
	ctx.Song = &data
	return ctx
}

// Book builds the context of a whole-book artifact. docs are rendered in
// the order given.
func (b *Builder) Book(docs []*song.Document, req Request) *Context {
	ctx := b.base(req)
	ctx.Songs = make([]SongData, 0, len(docs))
	for _, d := range docs {
		ctx.Songs = append(ctx.Songs, b.songData(d, req))
	}
	return ctx
}

func (b *Builder) base(req Request) *Context {
	book := b.book
	book.Authors = append([]string(nil), b.book.Authors...)
	book.Metadata = cloneMap(b.book.Metadata)

	out := req.Output
	out.Metadata = cloneMap(req.Output.Metadata)
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	out.Notation = req.notation().Name()
	if req.AltNotation != nil {
		out.AltNotation = req.AltNotation.Name()
	}

	return &Context{
		Book:    book,
		TOC:     b.xref.TOC(),
		Output:  out,
		Program: b.program,
		Style:   req.Style,
	}
}

func (b *Builder) songData(doc *song.Document, req Request) SongData {
	semitones := req.semitones(doc)
	view := doc.WithNotations(semitones, req.notation(), req.altNotation(doc))
	entry, _ := b.xref.Entry(doc.ID())

	data := SongData{
		ID:          doc.ID(),
		Number:      entry.Number,
		Anchor:      entry.Anchor,
		Title:       doc.Title(),
		Subtitles:   doc.Subtitles(),
		Artist:      doc.Artist(),
		Key:         view.Key(),
		OriginalKey: doc.Key(),
		Transpose:   semitones,
		Notation:    view.Notation().Name(),
		Directives:  make(map[string]string),
		Opaque:      []DirectiveData{},
	}
	if data.Subtitles == nil {
		data.Subtitles = []string{}
	}
	if alt := view.AltNotation(); alt != nil {
		data.AltNotation = alt.Name()
	}
	if d, ok := doc.Lookup(chordpro.KeyCapo); ok {
		data.Capo = d.Value
	}
	if d, ok := doc.Lookup(chordpro.KeyTempo); ok {
		data.Tempo = d.Value
	}

	for _, dir := range view.Directives() {
		if !dir.Known {
			data.Opaque = append(data.Opaque, directiveData(dir))
			continue
		}
		if _, seen := data.Directives[dir.Key]; !seen {
			data.Directives[dir.Key] = dir.Value
		}
	}

	data.Lines = make([]LineData, 0, len(view.Lines()))
	for _, vl := range view.Lines() {
		data.Lines = append(data.Lines, lineData(vl))
	}
	return data
}

func lineData(vl song.ViewLine) LineData {
	ld := LineData{
		Kind:          vl.Kind.String(),
		Number:        vl.Number,
		Text:          vl.Text,
		Section:       vl.Section,
		SectionNumber: vl.SectionNumber,
		SectionLabel:  vl.SectionLabel,
		ChorusRef:     vl.ChorusRef,
	}
	if vl.Kind == song.DirectiveLine {
		d := directiveData(vl.Directive)
		ld.Directive = &d
	}
	for _, seg := range vl.Segments {
		sd := SegmentData{Text: seg.Text}
		for _, c := range seg.Chords {
			sd.Chords = append(sd.Chords, ChordData(c))
		}
		if len(sd.Chords) > 0 {
			ld.HasChords = true
		}
		ld.Segments = append(ld.Segments, sd)
	}
	return ld
}

func directiveData(d song.Directive) DirectiveData {
	return DirectiveData{Key: d.Key, Name: d.Name, Value: d.Value, Known: d.Known}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
