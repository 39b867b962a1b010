package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/alnah/go-songbook/internal/assets"
)

// assetTemplateLoader exposes an AssetLoader to pongo2. Template names are
// flat, so includes resolve by name regardless of the including template.
type assetTemplateLoader struct {
	assets assets.AssetLoader
}

func (l assetTemplateLoader) Abs(_, name string) string { return name }

func (l assetTemplateLoader) Get(path string) (io.Reader, error) {
	src, err := l.assets.LoadTemplate(path)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(src), nil
}

// Pongo2Renderer executes Django-style templates. Compiled templates are
// cached for the lifetime of the renderer.
type Pongo2Renderer struct {
	mu sync.RWMutex

	assets    assets.AssetLoader
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewPongo2Renderer creates a renderer reading templates from loader.
func NewPongo2Renderer(loader assets.AssetLoader) *Pongo2Renderer {
	set := pongo2.NewSet("songbook", assetTemplateLoader{assets: loader})
	registerFilters()

	return &Pongo2Renderer{
		assets:    loader,
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}
}

// Render implements Renderer.
func (r *Pongo2Renderer) Render(ctx context.Context, templateID string, data any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpl, err := r.template(templateID)
	if err != nil {
		return nil, &TemplateError{Template: templateID, Err: err}
	}

	tctx, err := convertToContext(data)
	if err != nil {
		return nil, &TemplateError{Template: templateID, Err: fmt.Errorf("convert data: %w", err)}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(tctx, &buf); err != nil {
		return nil, &TemplateError{Template: templateID, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// template returns the compiled template, compiling it on first use. The
// source is read here rather than through the pongo2 loader so a missing
// template keeps its assets error.
func (r *Pongo2Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}

	src, err := r.assets.LoadTemplate(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := r.set.FromString(src)
	if err != nil {
		return nil, err
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// convertToContext turns data into a pongo2.Context through its JSON form,
// so templates see the same field names as the JSON output.
func convertToContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	out := make(pongo2.Context, len(tree))
	for k, v := range tree {
		out[k] = normalize(v)
	}
	return out, nil
}

// normalize turns whole JSON numbers back into ints; pongo2 prints
// float64 values with six decimals.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int(t)
		}
		return t
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}

// Compile-time interface check.
var _ Renderer = (*Pongo2Renderer)(nil)
