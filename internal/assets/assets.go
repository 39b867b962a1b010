package assets

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// Built-in template names.
const (
	BookHTMLTemplate = "book.html"
	SongHTMLTemplate = "song.html"
	BookTeXTemplate  = "book.tex"
	SongTeXTemplate  = "song.tex"
)
