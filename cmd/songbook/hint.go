package main

import (
	"context"
	"errors"
	"strings"

	songbook "github.com/alnah/go-songbook"
	"github.com/alnah/go-songbook/internal/assets"
	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/config"
	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/hints"
)

// hintFor returns a suggestion for the first failure it recognizes, or an
// empty string.
func hintFor(err error, env *Environment) string {
	var parseErr *chordpro.ParseError

	switch {
	case errors.Is(err, songbook.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, config.ErrNoSongsMatched):
		return hints.ForNoSongsMatched("the project directory")
	case errors.Is(err, songbook.ErrArtifactWrite):
		return hints.ForOutputDirectory()
	case errors.Is(err, songbook.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().Styles())
	case errors.Is(err, engine.ErrUnknownFormat):
		return hints.ForUnknownFormat(extensions())
	case errors.As(err, &parseErr):
		return hints.ForParseError(parseErr.Path, parseErr.Line)
	}
	return ""
}

func extensions() []string {
	names := engine.Formats()
	exts := make([]string, len(names))
	for i, n := range names {
		exts[i] = "." + strings.ToLower(n)
	}
	return exts
}
