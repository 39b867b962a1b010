package main

import (
	"context"
	"errors"
	"os"

	songbook "github.com/alnah/go-songbook"
	"github.com/alnah/go-songbook/internal/config"
)

// Exit codes for the songbook CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Build finished
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, project file, or manifest
	ExitIO      = 3 // Song, preface or artifact I/O failure
	ExitBrowser = 4 // Browser/Chrome errors
	ExitBuild   = 5 // Songs or renders failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Interrupted builds are general failures, whatever they interrupted.
	if errors.Is(err, context.Canceled) {
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, songbook.ErrBrowserConnect) ||
		errors.Is(err, songbook.ErrPageCreate) ||
		errors.Is(err, songbook.ErrPageLoad) ||
		errors.Is(err, songbook.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, songbook.ErrSourceRead) ||
		errors.Is(err, songbook.ErrArtifactWrite) ||
		errors.Is(err, ErrReadPreface) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownTarget) ||
		errors.Is(err, ErrInvalidWorkers) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrNoSongsMatched) ||
		errors.Is(err, songbook.ErrManifest) ||
		errors.Is(err, songbook.ErrStyleNotFound) ||
		errors.Is(err, songbook.ErrTemplateNotFound) ||
		errors.Is(err, songbook.ErrInvalidAssetName) ||
		errors.Is(err, songbook.ErrInvalidAssetPath) ||
		errors.Is(err, ErrProjectExists) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	// Parse and render failures (exit 5)
	if errors.Is(err, songbook.ErrBuildAborted) {
		return ExitBuild
	}

	return ExitGeneral
}
