package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-songbook/internal/assets"
)

// Output format names.
const (
	FormatHTML = "html"
	FormatTeX  = "tex"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Format describes one output format.
type Format struct {
	Name      string
	Extension string
	// Source is the format the template renders; PDF renders HTML and
	// converts it afterwards.
	Source       string
	BookTemplate string
	SongTemplate string
	// Templated is false for formats that dump the context directly.
	Templated bool
}

// DefaultTemplate returns the built-in template for book or per-song
// artifacts. It is empty for formats without templates.
func (f Format) DefaultTemplate(perSong bool) string {
	if perSong {
		return f.SongTemplate
	}
	return f.BookTemplate
}

// NeedsPDF reports whether rendered bytes go through PDF conversion.
func (f Format) NeedsPDF() bool { return f.Name == FormatPDF }

var formats = map[string]Format{
	FormatHTML: {
		Name:         FormatHTML,
		Extension:    ".html",
		Source:       FormatHTML,
		BookTemplate: assets.BookHTMLTemplate,
		SongTemplate: assets.SongHTMLTemplate,
		Templated:    true,
	},
	FormatTeX: {
		Name:         FormatTeX,
		Extension:    ".tex",
		Source:       FormatTeX,
		BookTemplate: assets.BookTeXTemplate,
		SongTemplate: assets.SongTeXTemplate,
		Templated:    true,
	},
	FormatPDF: {
		Name:         FormatPDF,
		Extension:    ".pdf",
		Source:       FormatHTML,
		BookTemplate: assets.BookHTMLTemplate,
		SongTemplate: assets.SongHTMLTemplate,
		Templated:    true,
	},
	FormatJSON: {
		Name:      FormatJSON,
		Extension: ".json",
		Source:    FormatJSON,
	},
}

// LookupFormat returns the format with the given name (case-insensitive).
func LookupFormat(name string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// FormatFromFile infers the format from a file name extension. ".htm" is
// accepted for HTML.
func FormatFromFile(file string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".htm" {
		ext = ".html"
	}
	for _, f := range formats {
		if f.Extension == ext {
			return f, nil
		}
	}
	if ext == "" {
		return Format{}, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, file)
	}
	return Format{}, fmt.Errorf("%w: extension %q of %q", ErrUnknownFormat, ext, file)
}

// Formats returns the known format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
