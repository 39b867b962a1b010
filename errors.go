package songbook

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrManifest       = errors.New("invalid manifest")
	ErrSourceRead     = errors.New("failed to read song source")
	ErrArtifactWrite  = errors.New("failed to write artifact")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrBuildAborted   = errors.New("build aborted")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// ManifestError reports a structurally invalid manifest entry. Field is a
// path into the manifest, e.g. "targets[1].notation".
type ManifestError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ManifestError) Error() string {
	msg := fmt.Sprintf("%v: %s: %s", ErrManifest, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ManifestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrManifest}
	}
	return []error{ErrManifest, e.Err}
}

// SongError attributes a read or parse failure to one song.
type SongError struct {
	Path string
	Err  error
}

func (e *SongError) Error() string {
	return fmt.Sprintf("song %s: %v", e.Path, e.Err)
}

func (e *SongError) Unwrap() error { return e.Err }

// RenderError attributes a render failure to a target and, in song mode,
// to one song.
type RenderError struct {
	Target string
	Song   string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Song == "" {
		return fmt.Sprintf("target %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("target %s, song %s: %v", e.Target, e.Song, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
