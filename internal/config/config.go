package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-songbook/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrNoSongsMatched  = errors.New("pattern matched no song")
)

// DefaultName is the project file looked up when none is given.
const DefaultName = "songbook"

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxAuthorLength   = 100
	MaxDateLength     = 60 // "auto:" plus a layout
	MaxPathLength     = 4096
	MaxTargetName     = 64
	MaxPatternLength  = 1024
	MaxDelimiterBytes = 8
)

// Config is a songbook.yaml project file.
type Config struct {
	Book     BookConfig     `yaml:"book,omitempty"`
	Songs    []string       `yaml:"songs,omitempty"`
	Notation string         `yaml:"notation,omitempty"`
	Syntax   SyntaxConfig   `yaml:"syntax,omitempty"`
	Assets   AssetsConfig   `yaml:"assets,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Build    BuildConfig    `yaml:"build,omitempty"`
	Targets  []TargetConfig `yaml:"targets,omitempty"`

	// Dir is the directory holding the project file. Relative paths in
	// the file resolve against it. Set by LoadConfig.
	Dir string `yaml:"-"`
}

// BookConfig is the title-page metadata.
type BookConfig struct {
	Title    string         `yaml:"title,omitempty"`
	Subtitle string         `yaml:"subtitle,omitempty"`
	Authors  []string       `yaml:"authors,omitempty"`
	Date     string         `yaml:"date,omitempty"`    // literal, "auto" or "auto:LAYOUT"
	Preface  string         `yaml:"preface,omitempty"` // markdown file
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// SyntaxConfig overrides the song markup delimiters. Empty fields keep
// the defaults.
type SyntaxConfig struct {
	DirectiveOpen    string `yaml:"directiveOpen,omitempty"`
	DirectiveClose   string `yaml:"directiveClose,omitempty"`
	ChordOpen        string `yaml:"chordOpen,omitempty"`
	ChordClose       string `yaml:"chordClose,omitempty"`
	AnnotationPrefix string `yaml:"annotationPrefix,omitempty"`
	CommentPrefix    string `yaml:"commentPrefix,omitempty"`
}

// AssetsConfig points at custom styles and templates.
type AssetsConfig struct {
	BasePath string `yaml:"basePath,omitempty"` // empty = embedded assets only
}

// OutputConfig is where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// BuildConfig tunes the orchestrator.
type BuildConfig struct {
	Workers       int    `yaml:"workers,omitempty"` // 0 = auto
	FailurePolicy string `yaml:"failurePolicy,omitempty"`
	MaxFailures   int    `yaml:"maxFailures,omitempty"`
	State         string `yaml:"state,omitempty"` // sqlite file; empty disables incremental builds
	Timeout       string `yaml:"timeout,omitempty"`
}

// TargetConfig is one output of the build.
type TargetConfig struct {
	Name               string         `yaml:"name,omitempty"`
	File               string         `yaml:"file,omitempty"`
	Format             string         `yaml:"format,omitempty"`
	Template           string         `yaml:"template,omitempty"`
	Style              string         `yaml:"style,omitempty"`
	Notation           string         `yaml:"notation,omitempty"`
	AltNotation        string         `yaml:"altNotation,omitempty"`
	Transpose          int            `yaml:"transpose,omitempty"`
	TransposeOverrides map[string]int `yaml:"transposeOverrides,omitempty"`
	Mode               string         `yaml:"mode,omitempty"`
	FailurePolicy      string         `yaml:"failurePolicy,omitempty"`
	Metadata           map[string]any `yaml:"metadata,omitempty"`
}

// Validate checks limits and the fields the orchestrator cannot check
// itself. Target semantics are validated by the build.
func (c *Config) Validate() error {
	if err := validateFieldLength("book.title", c.Book.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("book.subtitle", c.Book.Subtitle, MaxTitleLength); err != nil {
		return err
	}
	for i, a := range c.Book.Authors {
		if err := validateFieldLength(fmt.Sprintf("book.authors[%d]", i), a, MaxAuthorLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("book.date", c.Book.Date, MaxDateLength); err != nil {
		return err
	}
	if err := validateFieldLength("book.preface", c.Book.Preface, MaxPathLength); err != nil {
		return err
	}

	if len(c.Songs) == 0 {
		return fmt.Errorf("%w: songs: at least one pattern is required", ErrInvalidConfig)
	}
	for i, p := range c.Songs {
		field := fmt.Sprintf("songs[%d]", i)
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: %s: pattern is empty", ErrInvalidConfig, field)
		}
		if err := validateFieldLength(field, p, MaxPatternLength); err != nil {
			return err
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("%w: %s: pattern must be relative to the project file", ErrInvalidConfig, field)
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("%w: %s: malformed pattern %q", ErrInvalidConfig, field, p)
		}
	}

	delimiters := []struct{ field, value string }{
		{"syntax.directiveOpen", c.Syntax.DirectiveOpen},
		{"syntax.directiveClose", c.Syntax.DirectiveClose},
		{"syntax.chordOpen", c.Syntax.ChordOpen},
		{"syntax.chordClose", c.Syntax.ChordClose},
		{"syntax.annotationPrefix", c.Syntax.AnnotationPrefix},
		{"syntax.commentPrefix", c.Syntax.CommentPrefix},
	}
	for _, d := range delimiters {
		if err := validateFieldLength(d.field, d.value, MaxDelimiterBytes); err != nil {
			return err
		}
	}

	if c.Build.Workers < 0 {
		return fmt.Errorf("%w: build.workers: must be >= 0", ErrInvalidConfig)
	}
	if c.Build.MaxFailures < 0 {
		return fmt.Errorf("%w: build.maxFailures: must be >= 0", ErrInvalidConfig)
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: targets: at least one target is required", ErrInvalidConfig)
	}
	for i, t := range c.Targets {
		if err := validateFieldLength(fmt.Sprintf("targets[%d].name", i), t.Name, MaxTargetName); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("targets[%d].file", i), t.File, MaxPathLength); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the settings used for fields a project file
// leaves out.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Dir: "output"},
		Build:  BuildConfig{FailurePolicy: "fail-fast"},
	}
}

// Path resolves p against the project directory. Absolute and empty
// paths are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// ResolveSongs expands the song patterns against fsys, the project
// directory. Patterns keep their order; matches of one pattern are
// sorted; a song matched twice keeps its first position. A literal path
// is kept even when missing so the build reports it with the song.
func (c *Config) ResolveSongs(fsys fs.FS) ([]string, error) {
	var (
		songs []string
		seen  = make(map[string]bool)
	)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			songs = append(songs, p)
		}
	}

	for _, pattern := range c.Songs {
		pattern = filepath.ToSlash(strings.TrimSpace(pattern))
		pattern = strings.TrimPrefix(pattern, "./")
		if !hasMeta(pattern) {
			add(pattern)
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: songs: %q: %v", ErrInvalidConfig, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoSongsMatched, pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return songs, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{\\")
}

// LoadConfig loads a project file from a path or a config name.
// If nameOrPath contains a path separator or a YAML extension it's
// treated as a file path; otherwise it's searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, configPath, err)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultConfig().Output.Dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.Dir = filepath.Dir(abs)
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

// SearchPaths lists the files LoadConfig tries for a bare name, in order:
// the current directory, then ~/.config/go-songbook/, each with .yaml
// before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-songbook", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
