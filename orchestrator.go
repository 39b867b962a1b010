package songbook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/pipeline"
	"github.com/alnah/go-songbook/internal/song"
)

// Orchestrator runs songbook builds. One Orchestrator may run several
// builds, sequentially or concurrently; each build gets its own
// cross-reference snapshot. Parsed documents are kept between builds and
// reused while their source hash is unchanged.
type Orchestrator struct {
	cfg      orchestratorConfig
	logger   *slog.Logger
	reader   SourceReader
	sink     ArtifactSink
	store    StateStore
	assets   AssetLoader
	renderer Renderer
	json     Renderer
	markdown *pipeline.MarkdownRenderer
	pdf      PDFConverter
	ownsPDF  bool
	hook     func(State)
	now      func() time.Time

	mu   sync.Mutex
	docs map[string]cachedDoc
}

// cachedDoc is a parsed document and the hash of the source it came from.
type cachedDoc struct {
	hash string
	doc  *song.Document
}

// New creates an Orchestrator. Without options it reads songs from the
// local filesystem, renders with the embedded templates, converts PDF
// with headless Chrome and keeps artifacts in memory.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg: orchestratorConfig{
			timeout: defaultTimeout,
			program: ProgramName,
			version: Version,
		},
		logger:   discardLogger(),
		reader:   OSReader{},
		json:     engine.JSONRenderer{},
		markdown: pipeline.NewMarkdownRenderer(),
		now:      time.Now,
		docs:     make(map[string]cachedDoc),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.assets == nil {
		loader, err := NewAssetLoader(o.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		o.assets = loader
	}
	if o.renderer == nil {
		o.renderer = engine.NewPongo2Renderer(o.assets)
	}
	if o.sink == nil {
		o.sink = NewMemorySink()
	}
	// Browsers start on first PDF render, so builds without pdf targets
	// never launch Chrome.
	if o.pdf == nil {
		o.pdf = NewConverterPool(ResolvePoolSize(o.cfg.workers), o.cfg.timeout)
		o.ownsPDF = true
	}

	return o, nil
}

// Close releases browser resources started by the Orchestrator.
func (o *Orchestrator) Close() error {
	if o.ownsPDF && o.pdf != nil {
		return o.pdf.Close()
	}
	return nil
}

// Build runs one build of m. The report is returned even when the build
// fails; the error is non-nil exactly when the report state is Failed.
func (o *Orchestrator) Build(ctx context.Context, m Manifest) (*Report, error) {
	b := newBuild(o, m)
	return b.run(ctx)
}

// cachedParse returns the document parsed earlier from the same source
// bytes with the same parse options.
func (o *Orchestrator) cachedParse(key, hash string) (*song.Document, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.docs[key]
	if !ok || c.hash != hash {
		return nil, false
	}
	return c.doc, true
}

func (o *Orchestrator) rememberParse(key, hash string, doc *song.Document) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.docs[key] = cachedDoc{hash: hash, doc: doc}
}

// docCacheKey identifies a parse: the same bytes parsed with other
// delimiters or another starting notation give another document.
func docCacheKey(path, notation string, s chordpro.Syntax) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%s",
		path, notation,
		s.DirectiveOpen, s.DirectiveClose, s.ChordOpen, s.ChordClose, s.AnnotationPrefix, s.CommentPrefix)
}
