package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	songbook "github.com/alnah/go-songbook"
	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrReadPreface    = errors.New("failed to read preface")
	ErrUnknownTarget  = errors.New("unknown target")
	ErrInvalidWorkers = errors.New("invalid worker count")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// maxWorkers bounds --workers; every worker may hold a browser.
const maxWorkers = 32

// manifestFromConfig turns a project file into a build manifest. Song
// patterns are expanded against the project directory and the preface is
// read from disk. only, when set, keeps the named targets.
func manifestFromConfig(cfg *config.Config, only []string) (songbook.Manifest, error) {
	songs, err := cfg.ResolveSongs(os.DirFS(cfg.Dir))
	if err != nil {
		return songbook.Manifest{}, err
	}

	policy, err := songbook.ParseFailurePolicy(cfg.Build.FailurePolicy)
	if err != nil {
		return songbook.Manifest{}, fmt.Errorf("%w: build.failurePolicy: %v", ErrUsage, err)
	}

	book, err := bookFromConfig(cfg)
	if err != nil {
		return songbook.Manifest{}, err
	}

	targets, err := targetsFromConfig(cfg.Targets, only)
	if err != nil {
		return songbook.Manifest{}, err
	}

	return songbook.Manifest{
		Book:          book,
		Songs:         songs,
		Targets:       targets,
		FailurePolicy: policy,
		MaxFailures:   cfg.Build.MaxFailures,
		Notation:      cfg.Notation,
		Syntax:        chordpro.Syntax(cfg.Syntax),
	}, nil
}

func bookFromConfig(cfg *config.Config) (songbook.Book, error) {
	book := songbook.Book{
		Title:    cfg.Book.Title,
		Subtitle: cfg.Book.Subtitle,
		Authors:  cfg.Book.Authors,
		Date:     cfg.Book.Date,
		Metadata: cfg.Book.Metadata,
	}
	if cfg.Book.Preface == "" {
		return book, nil
	}

	path := cfg.Path(cfg.Book.Preface)
	data, err := os.ReadFile(path) // #nosec G304 -- preface path comes from the project file
	if err != nil {
		return songbook.Book{}, fmt.Errorf("%w: %w", ErrReadPreface, err)
	}
	book.Preface = string(data)
	book.PrefaceDir = filepath.Dir(path)
	return book, nil
}

// targetsFromConfig converts targets in project order. Target semantics
// are validated by the build so errors name manifest fields.
func targetsFromConfig(in []config.TargetConfig, only []string) ([]songbook.Target, error) {
	known := make([]string, 0, len(in))
	for _, t := range in {
		known = append(known, t.Name)
	}
	for _, name := range only {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownTarget, name, strings.Join(known, ", "))
		}
	}

	targets := make([]songbook.Target, 0, len(in))
	for i, t := range in {
		if len(only) > 0 && !slices.Contains(only, t.Name) {
			continue
		}
		var policy songbook.FailurePolicy
		if t.FailurePolicy != "" {
			p, err := songbook.ParseFailurePolicy(t.FailurePolicy)
			if err != nil {
				return nil, fmt.Errorf("%w: targets[%d].failurePolicy: %v", ErrUsage, i, err)
			}
			policy = p
		}
		targets = append(targets, songbook.Target{
			Name:               t.Name,
			File:               t.File,
			Format:             t.Format,
			Template:           t.Template,
			Style:              t.Style,
			Notation:           t.Notation,
			AltNotation:        t.AltNotation,
			Transpose:          t.Transpose,
			TransposeOverrides: t.TransposeOverrides,
			Mode:               songbook.Mode(t.Mode),
			FailurePolicy:      policy,
			Metadata:           t.Metadata,
		})
	}
	return targets, nil
}
