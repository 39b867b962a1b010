package songbook

import (
	"fmt"
	"strconv"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeA5     = "a5"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// pageDimensions holds portrait width and height in inches.
var pageDimensions = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeA5:     {5.83, 8.27},
	PageSizeLegal:  {8.5, 14},
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "a5", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := pageDimensions[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// Dimensions returns paper width and height in inches, orientation applied.
func (p *PageSettings) Dimensions() (width, height float64) {
	d := pageDimensions[strings.ToLower(p.Size)]
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return d[1], d[0]
	}
	return d[0], d[1]
}

// pageSettingsFromMetadata reads the "page" entry of target metadata:
// {page: {size: a4, orientation: landscape, margin: 0.75}}. Missing keys
// keep their defaults.
func pageSettingsFromMetadata(meta map[string]any) (*PageSettings, error) {
	page := DefaultPageSettings()
	raw, ok := meta["page"]
	if !ok || raw == nil {
		return page, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("metadata.page: expected a mapping, got %T", raw)
	}

	if v, ok := m["size"]; ok {
		page.Size = strings.ToLower(fmt.Sprint(v))
	}
	if v, ok := m["orientation"]; ok {
		page.Orientation = strings.ToLower(fmt.Sprint(v))
	}
	if v, ok := m["margin"]; ok {
		margin, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMargin, err)
		}
		page.Margin = margin
	}

	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}
