package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// buildFlags holds all flags for the build command. Zero values leave the
// project file setting alone.
type buildFlags struct {
	common      commonFlags
	output      string
	workers     int
	timeout     string
	bestEffort  bool
	maxFailures int
	state       string
	noState     bool
	assetPath   string
	targets     []string
}

// initFlags holds flags for the init command.
type initFlags struct {
	force bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "project file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every build step")
}

// newBuildFlagSet registers the build flags on a new FlagSet. Completion
// reads the same FlagSet.
func newBuildFlagSet(f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-render timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.bestEffort, "best-effort", false, "skip failed songs and renders")
	fs.IntVar(&f.maxFailures, "max-failures", 0, "abort a best-effort build after n failures")
	fs.StringVar(&f.state, "state", "", "build state database for incremental builds")
	fs.BoolVar(&f.noState, "no-state", false, "render everything, ignoring build state")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringSliceVar(&f.targets, "target", nil, "build only the named targets")

	addCommonFlags(fs, &f.common)
	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(f)
	fs.Usage = func() { printBuildUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string) (*initFlags, []string, error) {
	f := &initFlags{}
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing project file")
	fs.Usage = func() { printInitUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
