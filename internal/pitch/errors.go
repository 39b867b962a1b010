package pitch

import (
	"errors"
	"fmt"
)

// Sentinel errors for pitch operations.
var (
	ErrUnrecognizedPitch = errors.New("unrecognized pitch")
	ErrMalformedChord    = errors.New("malformed chord")
	ErrUnknownNotation   = errors.New("unknown notation system")
)

// UnrecognizedPitchError reports a spelling that the notation system does
// not know.
type UnrecognizedPitchError struct {
	Text   string
	System string
}

func (e *UnrecognizedPitchError) Error() string {
	return fmt.Sprintf("%v: %q in %s notation", ErrUnrecognizedPitch, e.Text, e.System)
}

func (e *UnrecognizedPitchError) Unwrap() error { return ErrUnrecognizedPitch }

// MalformedChordError reports a chord whose root cannot be read as a note.
type MalformedChordError struct {
	Text   string
	System string
}

func (e *MalformedChordError) Error() string {
	return fmt.Sprintf("%v: %q has no recognizable root in %s notation", ErrMalformedChord, e.Text, e.System)
}

func (e *MalformedChordError) Unwrap() error { return ErrMalformedChord }
