// Package dateutil resolves the book date of a songbook manifest.
//
// A date is either literal text, returned as is, or "auto" optionally
// followed by a layout: "auto", "auto:iso", "auto:DD/MM/YYYY". Layouts use
// the tokens below; text in brackets is copied literally.
//
//	YYYY 2024   YY 24
//	MMMM March  MMM Mar  MM 03  M 3
//	DDDD Friday DDD Fri  DD 01  D 1
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable "auto" value or layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxLayoutLength bounds layout strings.
const MaxLayoutLength = 50

// DefaultLayout is used by a bare "auto".
const DefaultLayout = "YYYY-MM-DD"

// Presets are named layouts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"month":    "MMMM YYYY",
	"year":     "YYYY",
}

// tokens is ordered longest first so matching is greedy.
var tokens = []struct {
	token  string
	format func(time.Time) string
}{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"DDDD", func(t time.Time) string { return t.Weekday().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"DDD", func(t time.Time) string { return t.Weekday().String()[:3] }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// piece is either literal text or a token formatter.
type piece struct {
	literal string
	format  func(time.Time) string
}

// Layout is a parsed date layout.
type Layout struct {
	pieces []piece
}

// ParseLayout parses a layout string. Characters that are not tokens are
// kept literally, so digits never act as Go reference-time fields.
func ParseLayout(layout string) (Layout, error) {
	if layout == "" {
		return Layout{}, fmt.Errorf("%w: layout cannot be empty", ErrInvalidDateFormat)
	}
	if len(layout) > MaxLayoutLength {
		return Layout{}, fmt.Errorf("%w: layout exceeds %d characters", ErrInvalidDateFormat, MaxLayoutLength)
	}

	var (
		l   Layout
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			l.pieces = append(l.pieces, piece{literal: lit.String()})
			lit.Reset()
		}
	}

outer:
	for i := 0; i < len(layout); {
		if layout[i] == '[' {
			end := strings.IndexByte(layout[i+1:], ']')
			if end < 0 {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			lit.WriteString(layout[i+1 : i+1+end])
			i += end + 2
			continue
		}
		for _, tok := range tokens {
			if strings.HasPrefix(layout[i:], tok.token) {
				flush()
				l.pieces = append(l.pieces, piece{format: tok.format})
				i += len(tok.token)
				continue outer
			}
		}
		lit.WriteByte(layout[i])
		i++
	}
	flush()
	return l, nil
}

// Format renders t with the layout.
func (l Layout) Format(t time.Time) string {
	var b strings.Builder
	for _, p := range l.pieces {
		if p.format != nil {
			b.WriteString(p.format(t))
			continue
		}
		b.WriteString(p.literal)
	}
	return b.String()
}

// Resolve returns value, or now formatted when value starts with "auto".
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	layout := DefaultLayout
	switch {
	case lower == "auto":
	case strings.HasPrefix(lower, "auto:"):
		layout = value[len("auto:"):]
		if preset, ok := Presets[strings.ToLower(layout)]; ok {
			layout = preset
		}
	default:
		return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:LAYOUT\"", ErrInvalidDateFormat, value)
	}

	l, err := ParseLayout(layout)
	if err != nil {
		return "", err
	}
	return l.Format(now), nil
}
