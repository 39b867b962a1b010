package songbook

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/state"
)

// Version is reported in every render context and mixed into incremental
// build fingerprints. Release builds set it with -ldflags.
var Version = "dev"

// ProgramName identifies the generator in render contexts.
const ProgramName = "songbook"

// StateRecord is what a StateStore keeps per artifact.
type StateRecord = state.Record

// StateStore remembers what earlier builds produced. The SQLite store
// returned by OpenStateStore implements it.
type StateStore interface {
	Lookup(ctx context.Context, key string) (StateRecord, bool, error)
	Save(ctx context.Context, rec StateRecord) error
	// Keys lists every stored key. Delete removes one; deleting a missing
	// key is not an error.
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Compile-time interface check
var _ StateStore = (*state.SQLiteStore)(nil)

// OpenStateStore opens or creates the SQLite build state at path.
func OpenStateStore(path string) (*state.SQLiteStore, error) {
	return state.Open(path)
}

// Renderer turns a template name and a data tree into bytes.
type Renderer = engine.Renderer

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// orchestratorConfig holds internal configuration for Orchestrator.
type orchestratorConfig struct {
	workers   int
	timeout   time.Duration
	assetPath string
	program   string
	version   string
}

// WithWorkers bounds parse and render parallelism. Zero or less sizes the
// pool from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.cfg.workers = n
	}
}

// WithTimeout bounds each render job, PDF conversion included.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("songbook: WithTimeout duration must be positive")
	}
	return func(o *Orchestrator) {
		o.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. Builds log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStateStore enables incremental builds.
func WithStateStore(s StateStore) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithSourceReader sets where song sources are read from. The default
// reads the local filesystem.
func WithSourceReader(r SourceReader) Option {
	return func(o *Orchestrator) {
		o.reader = r
	}
}

// WithSink sets where artifacts go. The default keeps them in memory.
func WithSink(s ArtifactSink) Option {
	return func(o *Orchestrator) {
		o.sink = s
	}
}

// WithRenderer replaces the template engine used by templated formats.
func WithRenderer(r Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

// WithPDFConverter replaces the headless Chrome converter. The caller
// keeps ownership: Close does not close it.
func WithPDFConverter(c PDFConverter) Option {
	return func(o *Orchestrator) {
		o.pdf = c
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded assets.
func WithAssetPath(path string) Option {
	return func(o *Orchestrator) {
		o.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over
// WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(o *Orchestrator) {
		o.assets = l
	}
}

// WithProgram sets the program name and version shown to templates.
func WithProgram(name, version string) Option {
	return func(o *Orchestrator) {
		o.cfg.program = name
		o.cfg.version = version
	}
}

// WithStateHook registers fn to be called on every build state change.
// It runs on the goroutine that called Build.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.hook = fn
	}
}

// WithClock sets the time source used for "auto" book dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
