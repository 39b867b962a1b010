package chordpro

import (
	"fmt"
	"strings"
)

// Syntax holds the lexical delimiters of a song source.
type Syntax struct {
	DirectiveOpen    string `yaml:"directiveOpen"`
	DirectiveClose   string `yaml:"directiveClose"`
	ChordOpen        string `yaml:"chordOpen"`
	ChordClose       string `yaml:"chordClose"`
	AnnotationPrefix string `yaml:"annotationPrefix"`
	CommentPrefix    string `yaml:"commentPrefix"`
}

// DefaultSyntax returns the standard ChordPro delimiters.
func DefaultSyntax() Syntax {
	return Syntax{
		DirectiveOpen:    "{",
		DirectiveClose:   "}",
		ChordOpen:        "[",
		ChordClose:       "]",
		AnnotationPrefix: "*",
		CommentPrefix:    "#",
	}
}

// WithDefaults fills empty fields from DefaultSyntax.
func (s Syntax) WithDefaults() Syntax {
	def := DefaultSyntax()
	if s.DirectiveOpen == "" {
		s.DirectiveOpen = def.DirectiveOpen
	}
	if s.DirectiveClose == "" {
		s.DirectiveClose = def.DirectiveClose
	}
	if s.ChordOpen == "" {
		s.ChordOpen = def.ChordOpen
	}
	if s.ChordClose == "" {
		s.ChordClose = def.ChordClose
	}
	if s.AnnotationPrefix == "" {
		s.AnnotationPrefix = def.AnnotationPrefix
	}
	if s.CommentPrefix == "" {
		s.CommentPrefix = def.CommentPrefix
	}
	return s
}

// Validate rejects delimiter sets that make lines ambiguous.
func (s Syntax) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"directiveOpen", s.DirectiveOpen},
		{"directiveClose", s.DirectiveClose},
		{"chordOpen", s.ChordOpen},
		{"chordClose", s.ChordClose},
		{"annotationPrefix", s.AnnotationPrefix},
		{"commentPrefix", s.CommentPrefix},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) != f.value || f.value == "" {
			return fmt.Errorf("%w: %s must be non-empty and contain no surrounding whitespace", ErrInvalidSyntax, f.name)
		}
	}

	leads := map[string]string{
		"directiveOpen": s.DirectiveOpen,
		"chordOpen":     s.ChordOpen,
		"commentPrefix": s.CommentPrefix,
	}
	for a, av := range leads {
		for b, bv := range leads {
			if a < b && (strings.HasPrefix(av, bv) || strings.HasPrefix(bv, av)) {
				return fmt.Errorf("%w: %s %q conflicts with %s %q", ErrInvalidSyntax, a, av, b, bv)
			}
		}
	}
	return nil
}
