// Package hints turns common failures into one-line suggestions. Every
// hint is formatted as "\n  hint: <text>" so callers can append it to an
// error message.
package hints

import (
	"fmt"
	"strings"

	"github.com/alnah/go-songbook/internal/fileutil"
)

// IsInContainer reports whether the process runs inside a container.
// Docker creates /.dockerenv automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// Getenv reads an environment variable.
type Getenv func(string) string

// ForBrowserConnect suggests the rod environment variables that usually
// fix a failed Chrome launch.
func ForBrowserConnect(getenv Getenv) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a custom Chrome")
	}
	hints = append(hints, "targets without .pdf files build without Chrome")

	return formatHints(hints)
}

// ForTimeout suggests a longer render timeout.
func ForTimeout() string {
	return format("large songbooks may need a longer --timeout or build.timeout")
}

// ForConfigNotFound suggests --config and the user config location among
// the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/songbook.yaml or run \"songbook init\""
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-songbook") {
			hint += "; a shared project can live at " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory covers artifact write failures.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForStyleNotFound lists the available styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForUnknownFormat lists the file extensions a target may use.
func ForUnknownFormat(extensions []string) string {
	return format("use one of " + strings.Join(extensions, ", ") + " or set the target format")
}

// ForNoSongsMatched covers a glob that found nothing.
func ForNoSongsMatched(dir string) string {
	return format(fmt.Sprintf("patterns are relative to %s; use ** to match subdirectories", dir))
}

// ForParseError points at the failing song line.
func ForParseError(path string, line int) string {
	if path == "" || line <= 0 {
		return ""
	}
	return format(fmt.Sprintf("see %s:%d; use --best-effort to build the other songs", path, line))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
