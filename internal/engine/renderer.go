package engine

import (
	"bytes"
	"context"
	"encoding/json"
)

// Renderer turns a data tree into artifact bytes using the named template.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, templateID string, data any) ([]byte, error)
}

// JSONRenderer dumps the data tree as indented JSON. The template ID is
// only used in errors.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(ctx context.Context, templateID string, data any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, &TemplateError{Template: templateID, Err: err}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ Renderer = JSONRenderer{}
