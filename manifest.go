package songbook

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-songbook/internal/assets"
	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/pitch"
	"github.com/alnah/go-songbook/internal/song"
)

// FailurePolicy decides what a failed song or render does to the build.
type FailurePolicy string

// Failure policies.
const (
	// FailFast stops scheduling work after the first failure and ends the
	// build Failed once in-flight work drains.
	FailFast FailurePolicy = "fail-fast"
	// BestEffort skips failed work, reports it, and keeps going.
	BestEffort FailurePolicy = "best-effort"
)

// ParseFailurePolicy reads a policy name. Empty selects FailFast.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailFast:
		return FailFast, nil
	case BestEffort:
		return BestEffort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %s or %s)", s, FailFast, BestEffort)
	}
}

// Mode selects how songs map to artifacts.
type Mode string

// Target modes.
const (
	// ModeBook renders one artifact holding every song.
	ModeBook Mode = "book"
	// ModeSong renders one artifact per song.
	ModeSong Mode = "song"
)

// Book is the project-level metadata shown on title pages.
type Book struct {
	Title    string
	Subtitle string
	Authors  []string
	// Date is printed as is, except "auto" and "auto:FORMAT" which resolve
	// to the build date.
	Date string
	// Preface is markdown. PrefaceDir resolves its relative links.
	Preface    string
	PrefaceDir string
	Metadata   map[string]any
}

// Target is one output of the build.
type Target struct {
	Name string
	// File is the artifact name relative to the sink. In song mode it may
	// hold {number} and {anchor} placeholders; without them each song goes
	// to <stem>/<anchor><ext>.
	File string
	// Format is html, tex, pdf or json. Empty infers it from File.
	Format   string
	Template string
	Style    string
	Notation string
	// AltNotation spells every chord a second time, untransposed, in this
	// system. Empty leaves it to each song's alt_notation directive.
	AltNotation string
	// Transpose shifts every song by this many semitones.
	Transpose int
	// TransposeOverrides replaces Transpose for the songs it names, keyed
	// by song path or song ID.
	TransposeOverrides map[string]int
	Mode               Mode
	// FailurePolicy applies to this target's renders. Empty inherits the
	// manifest policy.
	FailurePolicy FailurePolicy
	Metadata      map[string]any
}

// Manifest is everything one build needs.
type Manifest struct {
	Book    Book
	Songs   []string
	Targets []Target
	// FailurePolicy applies to song read and parse failures, and to
	// renders of targets without their own policy.
	FailurePolicy FailurePolicy
	// MaxFailures ends a best-effort build Failed once more than this many
	// failures happened. Zero means no limit.
	MaxFailures int
	// Notation is the system song files are written in until a notation
	// directive switches it.
	Notation string
	Syntax   chordpro.Syntax
}

// resolvedTarget is a validated target with its format and defaults filled.
type resolvedTarget struct {
	Target
	index    int
	format   engine.Format
	notation *pitch.NotationSystem
	alt      *pitch.NotationSystem
	policy   FailurePolicy
	page     *PageSettings
	template string
}

// Validate checks the manifest structure. The first problem is returned
// as a *ManifestError.
func (m Manifest) Validate() error {
	_, err := m.resolve()
	return err
}

func (m Manifest) resolve() ([]resolvedTarget, error) {
	if len(m.Songs) == 0 {
		return nil, &ManifestError{Field: "songs", Reason: "no songs listed"}
	}
	songIDs := make(map[string]bool, len(m.Songs)*2)
	for i, p := range m.Songs {
		field := fmt.Sprintf("songs[%d]", i)
		if strings.TrimSpace(p) == "" {
			return nil, &ManifestError{Field: field, Reason: "empty path"}
		}
		if songIDs[p] {
			return nil, &ManifestError{Field: field, Reason: fmt.Sprintf("duplicate song %q", p)}
		}
		songIDs[p] = true
		songIDs[song.NewID(p)] = true
	}

	if _, err := ParseFailurePolicy(string(m.FailurePolicy)); err != nil {
		return nil, &ManifestError{Field: "failurePolicy", Reason: err.Error()}
	}
	if m.MaxFailures < 0 {
		return nil, &ManifestError{Field: "maxFailures", Reason: "must not be negative"}
	}
	if _, err := pitch.Lookup(m.Notation); err != nil {
		return nil, &ManifestError{Field: "notation", Reason: "unknown notation system", Err: err}
	}
	if err := m.Syntax.WithDefaults().Validate(); err != nil {
		return nil, &ManifestError{Field: "syntax", Reason: "invalid delimiters", Err: err}
	}

	if len(m.Targets) == 0 {
		return nil, &ManifestError{Field: "targets", Reason: "no targets listed"}
	}
	names := make(map[string]bool, len(m.Targets))
	files := make(map[string]bool, len(m.Targets))
	resolved := make([]resolvedTarget, 0, len(m.Targets))
	for i, t := range m.Targets {
		rt, err := m.resolveTarget(i, t, songIDs)
		if err != nil {
			return nil, err
		}
		if names[rt.Name] {
			return nil, &ManifestError{Field: fmt.Sprintf("targets[%d].name", i), Reason: fmt.Sprintf("duplicate target %q", rt.Name)}
		}
		names[rt.Name] = true
		key := path.Clean(filepath.ToSlash(rt.File))
		if files[key] {
			return nil, &ManifestError{Field: fmt.Sprintf("targets[%d].file", i), Reason: fmt.Sprintf("file %q is written by another target", rt.File)}
		}
		files[key] = true
		resolved = append(resolved, rt)
	}
	return resolved, nil
}

func (m Manifest) resolveTarget(i int, t Target, songIDs map[string]bool) (resolvedTarget, error) {
	field := func(name string) string { return fmt.Sprintf("targets[%d].%s", i, name) }

	if strings.TrimSpace(t.Name) == "" {
		return resolvedTarget{}, &ManifestError{Field: field("name"), Reason: "empty name"}
	}
	if err := validateArtifactName(t.File); err != nil {
		return resolvedTarget{}, &ManifestError{Field: field("file"), Reason: err.Error()}
	}

	var (
		format engine.Format
		err    error
	)
	if t.Format != "" {
		format, err = engine.LookupFormat(t.Format)
	} else {
		format, err = engine.FormatFromFile(t.File)
	}
	if err != nil {
		return resolvedTarget{}, &ManifestError{Field: field("format"), Reason: "cannot determine output format", Err: err}
	}

	switch t.Mode {
	case "":
		t.Mode = ModeBook
	case ModeBook, ModeSong:
	default:
		return resolvedTarget{}, &ManifestError{Field: field("mode"), Reason: fmt.Sprintf("unknown mode %q (want %s or %s)", t.Mode, ModeBook, ModeSong)}
	}

	sys, err := pitch.Lookup(t.Notation)
	if err != nil {
		return resolvedTarget{}, &ManifestError{Field: field("notation"), Reason: "unknown notation system", Err: err}
	}

	var alt *pitch.NotationSystem
	if t.AltNotation != "" {
		alt, err = pitch.Lookup(t.AltNotation)
		if err != nil {
			return resolvedTarget{}, &ManifestError{Field: field("altNotation"), Reason: "unknown notation system", Err: err}
		}
	}

	policy := t.FailurePolicy
	if policy == "" {
		policy = m.FailurePolicy
	}
	policy, err = ParseFailurePolicy(string(policy))
	if err != nil {
		return resolvedTarget{}, &ManifestError{Field: field("failurePolicy"), Reason: err.Error()}
	}

	template := t.Template
	if template == "" {
		template = format.DefaultTemplate(t.Mode == ModeSong)
	} else if err := assets.ValidateTemplateName(template); err != nil {
		return resolvedTarget{}, &ManifestError{Field: field("template"), Reason: "invalid template name", Err: err}
	}

	if t.Style != "" {
		if err := assets.ValidateAssetName(t.Style); err != nil {
			return resolvedTarget{}, &ManifestError{Field: field("style"), Reason: "invalid style name", Err: err}
		}
	}

	for key := range t.TransposeOverrides {
		if !songIDs[key] {
			return resolvedTarget{}, &ManifestError{Field: field("transposeOverrides"), Reason: fmt.Sprintf("%q is not a listed song path or ID", key)}
		}
	}

	var page *PageSettings
	if format.NeedsPDF() {
		page, err = pageSettingsFromMetadata(t.Metadata)
		if err != nil {
			return resolvedTarget{}, &ManifestError{Field: field("metadata.page"), Reason: "invalid page settings", Err: err}
		}
	}

	return resolvedTarget{
		Target:   t,
		index:    i,
		format:   format,
		notation: sys,
		alt:      alt,
		policy:   policy,
		page:     page,
		template: template,
	}, nil
}

// transposeFor returns the semitones applied to doc.
func (t *resolvedTarget) transposeFor(doc *song.Document) int {
	if n, ok := t.TransposeOverrides[doc.Path()]; ok {
		return n
	}
	if n, ok := t.TransposeOverrides[doc.ID()]; ok {
		return n
	}
	return t.Transpose
}

// artifactName returns the artifact name of a song-mode render.
func (t *resolvedTarget) artifactName(number int, anchor string) string {
	if strings.Contains(t.File, "{number}") || strings.Contains(t.File, "{anchor}") {
		r := strings.NewReplacer("{number}", fmt.Sprintf("%02d", number), "{anchor}", anchor)
		return r.Replace(t.File)
	}
	ext := path.Ext(t.File)
	stem := strings.TrimSuffix(filepath.ToSlash(t.File), ext)
	return stem + "/" + anchor + ext
}

// validateArtifactName rejects names that would escape the sink.
func validateArtifactName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty file name")
	}
	slashed := filepath.ToSlash(name)
	if path.IsAbs(slashed) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("file %q must be relative", name)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return fmt.Errorf("file %q leaves the output directory", name)
		}
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("file %q contains a null byte", name)
	}
	return nil
}
