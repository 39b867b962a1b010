package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		style   string
		wantErr error
	}{
		{name: "default style", style: DefaultStyleName},
		{name: "unknown style", style: "nonexistent", wantErr: ErrStyleNotFound},
		{name: "dotted name", style: "default.css", wantErr: ErrInvalidAssetName},
		{name: "traversal", style: "../x", wantErr: ErrInvalidAssetName},
		{name: "empty", style: "", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.style)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.style, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) error = %v", tt.style, err)
			}
			if !strings.Contains(got, ".chord") {
				t.Error("default style has no .chord rule")
			}
		})
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	builtins := []string{BookHTMLTemplate, SongHTMLTemplate, BookTeXTemplate, SongTeXTemplate, "song-body.html", "song-body.tex"}
	for _, name := range builtins {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadTemplate(name)
			if err != nil {
				t.Fatalf("LoadTemplate(%q) error = %v", name, err)
			}
			if !strings.Contains(got, "song") {
				t.Errorf("LoadTemplate(%q) does not reference song data", name)
			}
		})
	}

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("missing.html")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("path in name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("../book.html")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadTemplate() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestEmbeddedLoader_Listing(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	styles := loader.Styles()
	if len(styles) == 0 || styles[0] != DefaultStyleName {
		t.Errorf("Styles() = %v, want default listed", styles)
	}

	templates := loader.Templates()
	found := false
	for _, name := range templates {
		if name == BookTeXTemplate {
			found = true
		}
	}
	if !found {
		t.Errorf("Templates() = %v, missing %s", templates, BookTeXTemplate)
	}
}
