package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine.
var (
	// ErrTemplate indicates a template could not be loaded, compiled or
	// executed.
	ErrTemplate = errors.New("template error")

	// ErrUnknownFormat indicates an output format (or file extension) that
	// no renderer serves.
	ErrUnknownFormat = errors.New("unknown output format")
)

// TemplateError reports a failure of one template. It matches ErrTemplate
// and whatever caused it.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", ErrTemplate, e.Template)
	}
	return fmt.Sprintf("%v: %s: %v", ErrTemplate, e.Template, e.Err)
}

func (e *TemplateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTemplate}
	}
	return []error{ErrTemplate, e.Err}
}
