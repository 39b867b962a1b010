package engine

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`%`, `\%`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX escapes the LaTeX special characters of s.
func EscapeLaTeX(s string) string {
	return latexReplacer.Replace(s)
}

// EscapeLaTeXVerbatim escapes s and makes every space non-breaking, so
// column alignment survives typesetting.
func EscapeLaTeXVerbatim(s string) string {
	return strings.ReplaceAll(EscapeLaTeX(s), " ", "~")
}

var registerOnce sync.Once

// registerFilters adds the engine filters to pongo2's global registry.
func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("latex") {
			_ = pongo2.RegisterFilter("latex", filterLaTeX)
		}
		if !pongo2.FilterExists("pre") {
			_ = pongo2.RegisterFilter("pre", filterPre)
		}
	})
}

func filterLaTeX(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(EscapeLaTeX(in.String())), nil
}

func filterPre(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(EscapeLaTeXVerbatim(in.String())), nil
}
