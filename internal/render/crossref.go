package render

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/alnah/go-songbook/internal/song"
)

// TOCEntry is one song in the table of contents.
type TOCEntry struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Anchor string `json:"anchor"`
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

// CrossRef is the per-build numbering and table of contents. It is
// immutable once built.
type CrossRef struct {
	byID map[string]TOCEntry
	toc  []TOCEntry
}

// NewCrossRef numbers docs in the given order, starting at 1, and builds
// the table of contents sorted by title. Ties keep numbering order.
func NewCrossRef(docs []*song.Document) *CrossRef {
	x := &CrossRef{
		byID: make(map[string]TOCEntry, len(docs)),
		toc:  make([]TOCEntry, 0, len(docs)),
	}
	for i, d := range docs {
		number := i + 1
		e := TOCEntry{
			ID:     d.ID(),
			Number: number,
			Anchor: Anchor(number, d.Title()),
			Title:  d.Title(),
			Artist: d.Artist(),
		}
		x.byID[e.ID] = e
		x.toc = append(x.toc, e)
	}

	sort.SliceStable(x.toc, func(i, j int) bool {
		a, b := strings.ToLower(x.toc[i].Title), strings.ToLower(x.toc[j].Title)
		if a != b {
			return a < b
		}
		return x.toc[i].Number < x.toc[j].Number
	})
	return x
}

// Entry returns the entry of the song with the given ID.
func (x *CrossRef) Entry(id string) (TOCEntry, bool) {
	e, ok := x.byID[id]
	return e, ok
}

// TOC returns a copy of the table of contents.
func (x *CrossRef) TOC() []TOCEntry {
	out := make([]TOCEntry, len(x.toc))
	copy(out, x.toc)
	return out
}

// Len returns the number of songs.
func (x *CrossRef) Len() int { return len(x.toc) }

// Anchor builds the in-document anchor of a song, e.g. "song-3-amazing-grace".
func Anchor(number int, title string) string {
	var b strings.Builder
	b.WriteString("song-")
	b.WriteString(strconv.Itoa(number))

	dash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}
