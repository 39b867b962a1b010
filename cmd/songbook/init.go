package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-songbook/internal/config"
	"github.com/alnah/go-songbook/internal/fileutil"
	"github.com/alnah/go-songbook/internal/yamlutil"
)

// ErrProjectExists is returned when init would overwrite a project file.
var ErrProjectExists = errors.New("project file already exists")

const exampleSong = `{title: Amazing Grace}
{artist: John Newton}
{key: G}

{start_of_verse}
A[G]mazing [G7]grace, how [C]sweet the [G]sound
That [G]saved a [Em]wretch like [D]me
{end_of_verse}
`

// sampleProject is the project file init writes.
func sampleProject() *config.Config {
	return &config.Config{
		Book: config.BookConfig{
			Title:   "My Songbook",
			Authors: []string{"Me"},
			Date:    "auto:month",
		},
		Songs:  []string{"songs/**/*.cho"},
		Output: config.OutputConfig{Dir: "output"},
		Build: config.BuildConfig{
			FailurePolicy: "fail-fast",
			State:         ".songbook/state.db",
		},
		Targets: []config.TargetConfig{
			{Name: "web", File: "songbook.html"},
			{Name: "print", File: "songbook.pdf"},
			{Name: "data", File: "songbook.json"},
		},
	}
}

// runInit writes a starter project into a directory, the working one by
// default.
func runInit(args []string, env *Environment) error {
	flags, positional, err := parseInitFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: init takes at most one directory, got %d", ErrUsage, len(positional))
	}
	dir := "."
	if len(positional) == 1 {
		dir = positional[0]
	}

	projectPath := filepath.Join(dir, config.DefaultName+".yaml")
	if fileutil.FileExists(projectPath) && !flags.force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrProjectExists, projectPath)
	}

	data, err := yamlutil.Marshal(sampleProject())
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "songs"), 0o750); err != nil {
		return fmt.Errorf("creating songs directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(projectPath, data); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	fmt.Fprintf(env.Stdout, "Created %s\n", projectPath)

	songPath := filepath.Join(dir, "songs", "amazing-grace.cho")
	if !fileutil.FileExists(songPath) {
		if err := fileutil.WriteFileAtomic(songPath, []byte(exampleSong)); err != nil {
			return fmt.Errorf("writing example song: %w", err)
		}
		fmt.Fprintf(env.Stdout, "Created %s\n", songPath)
	}

	fmt.Fprintln(env.Stdout)
	fmt.Fprintf(env.Stdout, "Run 'songbook build' in %s to build it.\n", dir)
	return nil
}
