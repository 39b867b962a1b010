package chordpro

import (
	"errors"
	"testing"
)

func TestSyntaxValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Syntax)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Syntax) {}},
		{name: "empty close", mutate: func(s *Syntax) { s.ChordClose = "" }, wantErr: true},
		{name: "padded delimiter", mutate: func(s *Syntax) { s.DirectiveOpen = " {" }, wantErr: true},
		{name: "comment shadows chord", mutate: func(s *Syntax) { s.CommentPrefix = "[" }, wantErr: true},
		{name: "prefix overlap", mutate: func(s *Syntax) { s.DirectiveOpen = "[[" }, wantErr: true},
		{name: "alternate set", mutate: func(s *Syntax) { s.ChordOpen, s.ChordClose = "<", ">" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSyntax()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSyntax) {
				t.Errorf("Validate() = %v, want ErrInvalidSyntax", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestSyntaxWithDefaults(t *testing.T) {
	t.Parallel()

	got := Syntax{ChordOpen: "("}.WithDefaults()
	if got.ChordOpen != "(" || got.ChordClose != "]" || got.DirectiveOpen != "{" {
		t.Errorf("WithDefaults() = %+v", got)
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		wantKey   string
		wantKnown bool
	}{
		{"T", KeyTitle, true},
		{" soc ", KeyStartOfChorus, true},
		{"Start_Of_Tab", KeyStartOfTab, true},
		{"capo", KeyCapo, true},
		{"x_custom", "x_custom", false},
		{"new_song", "new_song", false},
	}
	for _, tt := range tests {
		key, ok := Canonical(tt.name)
		if key != tt.wantKey || ok != tt.wantKnown {
			t.Errorf("Canonical(%q) = %q, %v; want %q, %v", tt.name, key, ok, tt.wantKey, tt.wantKnown)
		}
	}
	if len(Known()) != 18 {
		t.Errorf("Known() has %d keys, want 18", len(Known()))
	}
}
