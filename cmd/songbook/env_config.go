package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-songbook/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the project file.
type envConfig struct {
	ConfigPath string        // SONGBOOK_CONFIG: project file name or path
	OutputDir  string        // SONGBOOK_OUTPUT_DIR: output directory
	AssetPath  string        // SONGBOOK_ASSET_PATH: custom asset directory
	State      string        // SONGBOOK_STATE: build state database
	Policy     string        // SONGBOOK_FAILURE_POLICY: fail-fast or best-effort
	Timeout    time.Duration // SONGBOOK_TIMEOUT: per-render timeout
	Workers    int           // SONGBOOK_WORKERS: parallel workers
}

// knownEnvVars lists valid SONGBOOK_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SONGBOOK_CONFIG":         true,
	"SONGBOOK_OUTPUT_DIR":     true,
	"SONGBOOK_ASSET_PATH":     true,
	"SONGBOOK_STATE":          true,
	"SONGBOOK_FAILURE_POLICY": true,
	"SONGBOOK_TIMEOUT":        true,
	"SONGBOOK_WORKERS":        true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("SONGBOOK_CONFIG"),
		OutputDir:  getenv("SONGBOOK_OUTPUT_DIR"),
		AssetPath:  getenv("SONGBOOK_ASSET_PATH"),
		State:      getenv("SONGBOOK_STATE"),
		Policy:     getenv("SONGBOOK_FAILURE_POLICY"),
	}

	if timeout := getenv("SONGBOOK_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("SONGBOOK_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized SONGBOOK_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, "SONGBOOK_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values the project file left unset.
// Precedence: CLI flags > env vars > project file > defaults. Flags are
// applied later by mergeFlags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && (cfg.Output.Dir == "" || cfg.Output.Dir == config.DefaultConfig().Output.Dir) {
		cfg.Output.Dir = env.OutputDir
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.State != "" && cfg.Build.State == "" {
		cfg.Build.State = env.State
	}
	if env.Policy != "" && cfg.Build.FailurePolicy == config.DefaultConfig().Build.FailurePolicy {
		cfg.Build.FailurePolicy = env.Policy
	}
	if env.Timeout > 0 && cfg.Build.Timeout == "" {
		cfg.Build.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 && cfg.Build.Workers == 0 {
		cfg.Build.Workers = env.Workers
	}
}
