package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/alnah/go-songbook/internal/dateutil"
	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/pitch"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: songbook <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Build every target of a project")
	fmt.Fprintln(w, "  init        Create a starter project")
	fmt.Fprintln(w, "  doctor      Check the project and the PDF toolchain")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'songbook help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: songbook build [project] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse every song of a project and render every target.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  project    Project file name or path (default: songbook)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>       Project file name or path")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --target <name>       Build only the named targets (repeatable)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles and templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --best-effort         Skip failed songs and renders")
	fmt.Fprintln(w, "      --max-failures <n>    Abort a best-effort build after n failures")
	fmt.Fprintln(w, "      --state <path>        Build state database")
	fmt.Fprintln(w, "      --no-state            Render everything")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every build step")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Formats:   "+strings.Join(engine.Formats(), ", "))
	fmt.Fprintln(w, "Notations: "+strings.Join(pitch.Systems(), ", "))
	fmt.Fprintln(w, "Dates:     \"auto\", \"auto:LAYOUT\" or a literal")
	fmt.Fprintln(w, "           Tokens: YYYY, YY, MMMM, MMM, MM, M, DDDD, DDD, DD, D")
	fmt.Fprintln(w, "           Presets: "+strings.Join(presetNames(), ", "))
	fmt.Fprintln(w, "           Use [text] to escape literals: [Edition] YYYY")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SONGBOOK_CONFIG, SONGBOOK_OUTPUT_DIR, SONGBOOK_ASSET_PATH, SONGBOOK_STATE,")
	fmt.Fprintln(w, "  SONGBOOK_FAILURE_POLICY, SONGBOOK_TIMEOUT, SONGBOOK_WORKERS")
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: songbook init [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write songbook.yaml and an example song into dir (default: .).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -f, --force    Overwrite an existing songbook.yaml")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: songbook doctor [project] [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the project file, Chrome and the environment.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: songbook version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: songbook help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}

func presetNames() []string {
	names := make([]string, 0, len(dateutil.Presets))
	for name := range dateutil.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
