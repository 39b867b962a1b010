package chordpro

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrParse         = errors.New("parse error")
	ErrInvalidSyntax = errors.New("invalid syntax configuration")
)

// ParseError locates a failure in a song source. Line and Column are
// 1-based; Column counts runes.
//
// When the failure comes from the pitch model (an unrecognized chord
// root), Err holds that error and Unwrap returns it instead of ErrParse.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := ErrParse.Error()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.location(), e.Line, e.Column, msg)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

func (e *ParseError) location() string {
	if e.Path == "" {
		return "<input>"
	}
	return e.Path
}
