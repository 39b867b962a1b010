package songbook

import (
	"errors"
	"sort"
)

// State is a build's position in its lifecycle.
type State int

// Build states, in order.
const (
	StateIdle State = iota
	StateCollecting
	StateParsing
	StateRendering
	StateDone
	StateFailed
)

var stateNames = [...]string{"idle", "collecting", "parsing", "rendering", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions follow.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// SongResult is the outcome of reading and parsing one song.
type SongResult struct {
	Path string
	ID   string
	// Hash is the BLAKE3 digest of the source, empty if it was not read.
	Hash  string
	Title string
	// Cached is true when the parsed document was reused from an earlier
	// build with the same source hash.
	Cached bool
	Err    error
}

// RenderResult is the outcome of one render job: a whole book, or one
// song of a song-mode target.
type RenderResult struct {
	Target string
	// Song is the song path in song mode, empty in book mode.
	Song     string
	Artifact string
	Skipped  bool
	Err      error
}

// Artifact is one produced output.
type Artifact struct {
	Name   string
	Target string
	// SongID is set for song-mode artifacts.
	SongID string
	Format string
	// Data is nil for skipped artifacts; the previous bytes are still in
	// the sink.
	Data []byte
	Size int64
	Hash string
	// Skipped is true when the recorded artifact was still current.
	Skipped bool
}

// Report summarizes one build. Slices are in manifest order.
type Report struct {
	State     State
	Songs     []SongResult
	Renders   []RenderResult
	Artifacts []Artifact
	// Warnings lists failures tolerated by a best-effort policy and store
	// problems that forced a render.
	Warnings []string
}

// Err joins every song and render failure. It is nil when nothing failed.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Songs {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	for _, rr := range r.Renders {
		if rr.Err != nil {
			errs = append(errs, rr.Err)
		}
	}
	return errors.Join(errs...)
}

// Failures counts failed songs and renders.
func (r *Report) Failures() int {
	n := 0
	for _, s := range r.Songs {
		if s.Err != nil {
			n++
		}
	}
	for _, rr := range r.Renders {
		if rr.Err != nil {
			n++
		}
	}
	return n
}

// Artifact returns the artifact with the given name.
func (r *Report) Artifact(name string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// sortArtifacts orders artifacts by name so reports do not depend on
// worker scheduling.
func sortArtifacts(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
}
