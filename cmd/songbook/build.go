package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	songbook "github.com/alnah/go-songbook"
	"github.com/alnah/go-songbook/internal/config"
)

// runBuild loads the project file, builds every target and prints the
// report. The returned error carries the build failure for exit codes.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: build takes at most one project file, got %d", ErrUsage, len(positional))
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := config.LoadConfig(projectName(flags, positional, envCfg))
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}

	timeout, err := resolveTimeout(cfg.Build.Timeout)
	if err != nil {
		return err
	}

	m, err := manifestFromConfig(cfg, flags.targets)
	if err != nil {
		return err
	}

	sink := songbook.NewDirSink(cfg.Path(cfg.Output.Dir))
	opts := []songbook.Option{
		songbook.WithWorkers(cfg.Build.Workers),
		songbook.WithSourceReader(songbook.OSReader{BaseDir: cfg.Dir}),
		songbook.WithSink(sink),
		songbook.WithClock(env.Now),
		songbook.WithProgram(songbook.ProgramName, songbook.Version),
	}
	if timeout > 0 {
		opts = append(opts, songbook.WithTimeout(timeout))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, songbook.WithAssetPath(cfg.Path(cfg.Assets.BasePath)))
	}
	if flags.common.verbose {
		opts = append(opts, songbook.WithLogger(newLogger(env, slog.LevelDebug)))
	}
	if cfg.Build.State != "" && !flags.noState {
		store, err := songbook.OpenStateStore(cfg.Path(cfg.Build.State))
		if err != nil {
			return fmt.Errorf("opening build state: %w", err)
		}
		defer store.Close()
		opts = append(opts, songbook.WithStateStore(store))
	}

	orch, err := songbook.New(opts...)
	if err != nil {
		return err
	}
	defer orch.Close()

	start := env.Now()
	report, buildErr := orch.Build(ctx, m)
	printReport(env, sink, report, buildErr, flags.common, env.Now().Sub(start))
	return buildErr
}

// projectName picks the project file. Precedence: --config, positional
// argument, SONGBOOK_CONFIG, then the default name.
func projectName(flags *buildFlags, positional []string, env *envConfig) string {
	switch {
	case flags.common.config != "":
		return flags.common.config
	case len(positional) == 1:
		return positional[0]
	case env.ConfigPath != "":
		return env.ConfigPath
	default:
		return config.DefaultName
	}
}

// mergeFlags applies explicitly set flags over the project file. Flag
// paths are relative to the working directory, not the project.
func mergeFlags(flags *buildFlags, cfg *config.Config) error {
	if flags.output != "" {
		abs, err := filepath.Abs(flags.output)
		if err != nil {
			return fmt.Errorf("resolving output directory: %w", err)
		}
		cfg.Output.Dir = abs
	}
	if flags.assetPath != "" {
		abs, err := filepath.Abs(flags.assetPath)
		if err != nil {
			return fmt.Errorf("resolving asset path: %w", err)
		}
		cfg.Assets.BasePath = abs
	}
	if flags.state != "" {
		abs, err := filepath.Abs(flags.state)
		if err != nil {
			return fmt.Errorf("resolving state path: %w", err)
		}
		cfg.Build.State = abs
	}
	if flags.workers > 0 {
		cfg.Build.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Build.Timeout = flags.timeout
	}
	if flags.bestEffort {
		cfg.Build.FailurePolicy = string(songbook.BestEffort)
	}
	if flags.maxFailures > 0 {
		cfg.Build.MaxFailures = flags.maxFailures
	}
	return nil
}

// validateWorkers checks if the worker count is within valid range.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkers, n)
	}
	if n > maxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkers, n, maxWorkers)
	}
	return nil
}

// resolveTimeout parses a timeout setting. Empty keeps the library default.
func resolveTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, s)
	}
	return d, nil
}

// newLogger writes build events as text to stderr.
func newLogger(env *Environment, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))
}

// printReport outputs build results. Failures are printed only when the
// build failed; tolerated ones show up as warnings.
func printReport(env *Environment, sink *songbook.DirSink, r *songbook.Report, buildErr error, f commonFlags, elapsed time.Duration) {
	if r == nil {
		return
	}

	if buildErr != nil {
		for _, s := range r.Songs {
			if s.Err != nil {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", s.Path, s.Err)
			}
		}
		for _, rr := range r.Renders {
			if rr.Err == nil {
				continue
			}
			label := rr.Target
			if rr.Song != "" {
				label += " (" + rr.Song + ")"
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", label, rr.Err)
		}
	}

	if f.quiet {
		return
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
	}

	unchanged := 0
	for _, a := range r.Artifacts {
		path := sink.Path(a.Name)
		switch {
		case a.Skipped:
			unchanged++
			if f.verbose {
				fmt.Fprintf(env.Stdout, "Unchanged %s\n", path)
			}
		case f.verbose:
			fmt.Fprintf(env.Stdout, "Created %s (%d bytes, %s)\n", path, a.Size, shortHash(a.Hash))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", path)
		}
	}

	fmt.Fprintf(env.Stdout, "\n%d songs, %d artifacts (%d unchanged), %d failed in %v\n",
		len(r.Songs), len(r.Artifacts), unchanged, r.Failures(), elapsed.Round(time.Millisecond))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
