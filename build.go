package songbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alnah/go-songbook/internal/chordpro"
	"github.com/alnah/go-songbook/internal/dateutil"
	"github.com/alnah/go-songbook/internal/engine"
	"github.com/alnah/go-songbook/internal/fileutil"
	"github.com/alnah/go-songbook/internal/render"
	"github.com/alnah/go-songbook/internal/song"
)

// build is the state of one Build call.
type build struct {
	o      *Orchestrator
	m      Manifest
	report *Report
	start  time.Time

	syntax  chordpro.Syntax
	targets []resolvedTarget
	styles  map[int]string
	book    render.Book

	// docs holds the successfully parsed songs in manifest order.
	docs    []*song.Document
	builder *render.Builder

	stop     atomic.Bool
	failures atomic.Int32

	mu       sync.Mutex
	warnings []string
}

func newBuild(o *Orchestrator, m Manifest) *build {
	return &build{
		o:      o,
		m:      m,
		report: &Report{State: StateIdle},
		start:  time.Now(),
		styles: make(map[int]string),
	}
}

func (b *build) run(ctx context.Context) (*Report, error) {
	b.o.logger.Info("build started", "songs", len(b.m.Songs), "targets", len(b.m.Targets))

	b.setState(StateCollecting)
	if err := b.collect(ctx); err != nil {
		return b.fail(err)
	}

	b.setState(StateParsing)
	b.parse(ctx)
	if err := b.checkpoint(ctx); err != nil {
		return b.fail(err)
	}
	if len(b.docs) == 0 {
		return b.fail(fmt.Errorf("%w: no song could be parsed", ErrBuildAborted))
	}

	// The snapshot is written once here, before any render starts, and
	// only read afterwards.
	xref := render.NewCrossRef(b.docs)
	b.builder = render.NewBuilder(xref, b.book, render.Program{Name: b.o.cfg.program, Version: b.o.cfg.version})

	b.setState(StateRendering)
	jobs := b.render(ctx)
	if err := b.checkpoint(ctx); err != nil {
		return b.fail(err)
	}
	b.prune(ctx, jobs)

	b.finish()
	b.setState(StateDone)
	b.o.logger.Info("build finished",
		"state", b.report.State.String(),
		"artifacts", len(b.report.Artifacts),
		"warnings", len(b.report.Warnings),
		"duration", time.Since(b.start))
	return b.report, nil
}

func (b *build) setState(s State) {
	if b.report.State.Terminal() {
		b.o.logger.Warn("build state change ignored", "from", b.report.State.String(), "to", s.String())
		return
	}
	b.report.State = s
	b.o.logger.Debug("build state", "state", s.String())
	if b.o.hook != nil {
		b.o.hook(s)
	}
}

// fail ends the build Failed once in-flight work has drained.
func (b *build) fail(err error) (*Report, error) {
	b.finish()
	b.setState(StateFailed)
	b.o.logger.Error("build failed", "error", err, "duration", time.Since(b.start))
	return b.report, err
}

func (b *build) finish() {
	b.mu.Lock()
	b.report.Warnings = append(b.report.Warnings, b.warnings...)
	b.warnings = nil
	b.mu.Unlock()
	sortArtifacts(b.report.Artifacts)
}

// checkpoint decides whether the build may continue after a phase.
func (b *build) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuildAborted, err)
	}
	if b.stop.Load() {
		return fmt.Errorf("%w: %w", ErrBuildAborted, b.report.Err())
	}
	return nil
}

func (b *build) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.o.logger.Warn(msg)
	b.mu.Lock()
	b.warnings = append(b.warnings, msg)
	b.mu.Unlock()
}

// recordFailure applies policy to one failure. Fail-fast stops new work;
// best-effort stops once MaxFailures is exceeded.
func (b *build) recordFailure(policy FailurePolicy) {
	n := b.failures.Add(1)
	if policy == FailFast {
		b.stop.Store(true)
		return
	}
	if b.m.MaxFailures > 0 && int(n) > b.m.MaxFailures {
		b.stop.Store(true)
	}
}

// ---------------------------------------------------------------------------
// Collecting
// ---------------------------------------------------------------------------

func (b *build) collect(ctx context.Context) error {
	targets, err := b.m.resolve()
	if err != nil {
		return err
	}
	b.targets = targets
	b.syntax = b.m.Syntax.WithDefaults()

	date, err := dateutil.Resolve(b.m.Book.Date, b.o.now())
	if err != nil {
		return &ManifestError{Field: "book.date", Reason: "invalid date", Err: err}
	}
	b.book = render.Book{
		Title:    b.m.Book.Title,
		Subtitle: b.m.Book.Subtitle,
		Authors:  append([]string{}, b.m.Book.Authors...),
		Date:     date,
		Metadata: b.m.Book.Metadata,
	}
	if b.m.Book.Preface != "" {
		frag, err := b.o.markdown.Render(ctx, b.m.Book.Preface, b.m.Book.PrefaceDir)
		if err != nil {
			return &ManifestError{Field: "book.preface", Reason: "cannot render preface", Err: err}
		}
		b.book.Preface = frag.HTML
		b.book.PrefaceText = frag.Text
	}

	for i := range b.targets {
		t := &b.targets[i]
		if t.format.Source != engine.FormatHTML {
			continue
		}
		name := t.Style
		if name == "" {
			name = DefaultStyle
		}
		css, err := b.o.assets.LoadStyle(name)
		if err != nil {
			return &ManifestError{Field: fmt.Sprintf("targets[%d].style", t.index), Reason: "cannot load style", Err: err}
		}
		b.styles[t.index] = css
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func (b *build) parse(ctx context.Context) {
	n := len(b.m.Songs)
	results := make([]SongResult, n)
	docs := make([]*song.Document, n)
	policy, _ := ParseFailurePolicy(string(b.m.FailurePolicy))

	ran := b.runJobs(ctx, n, func(i int) {
		results[i], docs[i] = b.parseOne(ctx, b.m.Songs[i])
		if results[i].Err != nil {
			b.recordFailure(policy)
		}
	})

	for i := range results {
		if !ran[i] {
			continue
		}
		b.report.Songs = append(b.report.Songs, results[i])
		if results[i].Err != nil {
			if policy == BestEffort {
				b.warn("skipped song %s: %v", results[i].Path, results[i].Err)
			}
			continue
		}
		b.docs = append(b.docs, docs[i])
	}
}

func (b *build) parseOne(ctx context.Context, path string) (SongResult, *song.Document) {
	res := SongResult{Path: path, ID: song.NewID(path)}

	data, err := b.o.reader.ReadSource(ctx, path)
	if err != nil {
		res.Err = &SongError{Path: path, Err: err}
		return res, nil
	}
	res.Hash = fileutil.Hash(data)

	key := docCacheKey(path, b.m.Notation, b.syntax)
	if doc, ok := b.o.cachedParse(key, res.Hash); ok {
		res.Title = doc.Title()
		res.Cached = true
		b.o.logger.Debug("song unchanged", "path", path)
		return res, doc
	}

	doc, err := chordpro.Parse(data, path,
		chordpro.WithSyntax(b.syntax),
		chordpro.WithNotation(b.m.Notation),
	)
	if err != nil {
		res.Err = &SongError{Path: path, Err: err}
		return res, nil
	}
	b.o.rememberParse(key, res.Hash, doc)
	res.Title = doc.Title()
	b.o.logger.Debug("song parsed", "path", path, "title", doc.Title(), "lines", len(doc.Lines()))
	return res, doc
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// renderJob produces one artifact. doc is nil for a whole-book render.
type renderJob struct {
	target *resolvedTarget
	doc    *song.Document
	name   string
}

// stateKey is the job's record key in the StateStore.
func (j renderJob) stateKey() string { return j.target.Name + ":" + j.name }

func (b *build) jobs() []renderJob {
	xref := b.builder.CrossRef()
	var jobs []renderJob
	for i := range b.targets {
		t := &b.targets[i]
		if t.Mode != ModeSong {
			jobs = append(jobs, renderJob{target: t, name: t.File})
			continue
		}
		for _, doc := range b.docs {
			entry, _ := xref.Entry(doc.ID())
			jobs = append(jobs, renderJob{target: t, doc: doc, name: t.artifactName(entry.Number, entry.Anchor)})
		}
	}
	return jobs
}

func (b *build) render(ctx context.Context) []renderJob {
	jobs := b.jobs()
	results := make([]RenderResult, len(jobs))
	artifacts := make([]*Artifact, len(jobs))

	ran := b.runJobs(ctx, len(jobs), func(i int) {
		results[i], artifacts[i] = b.renderOne(ctx, jobs[i])
		if results[i].Err != nil {
			b.recordFailure(jobs[i].target.policy)
		}
	})

	for i, job := range jobs {
		if !ran[i] {
			continue
		}
		b.report.Renders = append(b.report.Renders, results[i])
		if results[i].Err != nil {
			if job.target.policy == BestEffort {
				b.warn("skipped artifact %s: %v", job.name, results[i].Err)
			}
			continue
		}
		b.report.Artifacts = append(b.report.Artifacts, *artifacts[i])
	}
	return jobs
}

// prune deletes the state records of this build's targets that no job
// produced, such as a song dropped from a song-mode target. Records of
// targets outside the manifest are kept for builds that select them.
func (b *build) prune(ctx context.Context, jobs []renderJob) {
	if b.o.store == nil {
		return
	}
	keys, err := b.o.store.Keys(ctx)
	if err != nil {
		b.warn("build state not pruned: %v", err)
		return
	}

	live := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		live[job.stateKey()] = true
	}
	for _, key := range keys {
		if live[key] || !b.ownsStateKey(key) {
			continue
		}
		if err := b.o.store.Delete(ctx, key); err != nil {
			b.warn("stale build state %s not deleted: %v", key, err)
			continue
		}
		b.o.logger.Debug("build state pruned", "key", key)
	}
}

func (b *build) ownsStateKey(key string) bool {
	name, _, ok := strings.Cut(key, ":")
	if !ok {
		return false
	}
	for i := range b.targets {
		if b.targets[i].Name == name {
			return true
		}
	}
	return false
}

func (b *build) renderOne(ctx context.Context, job renderJob) (RenderResult, *Artifact) {
	t := job.target
	res := RenderResult{Target: t.Name, Artifact: job.name}
	if job.doc != nil {
		res.Song = job.doc.Path()
	}
	fail := func(err error) (RenderResult, *Artifact) {
		res.Err = &RenderError{Target: t.Name, Song: res.Song, Err: err}
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.o.cfg.timeout)
	defer cancel()

	req := render.Request{
		Output: render.Output{
			Name:      t.Name,
			File:      job.name,
			Format:    t.format.Name,
			Template:  t.template,
			Style:     t.Style,
			Transpose: t.Transpose,
			Mode:      string(t.Mode),
			Metadata:  t.Metadata,
		},
		Notation:    t.notation,
		AltNotation: t.alt,
		Transpose:   t.transposeFor,
		Style:       b.styles[t.index],
	}
	var data *render.Context
	if job.doc != nil {
		data = b.builder.Song(job.doc, req)
	} else {
		data = b.builder.Book(b.docs, req)
	}

	renderer := b.o.renderer
	if !t.format.Templated {
		renderer = b.o.json
	}
	source, err := renderer.Render(ctx, t.template, data)
	if err != nil {
		return fail(err)
	}

	key := job.stateKey()
	fingerprint, err := b.fingerprint(t, job.name, source)
	if err != nil {
		return fail(err)
	}
	if a, ok := b.upToDate(ctx, key, fingerprint, job); ok {
		res.Skipped = true
		b.o.logger.Info("artifact up to date", "target", t.Name, "file", job.name)
		return res, a
	}

	out := source
	if t.format.NeedsPDF() {
		out, err = b.o.pdf.ToPDF(ctx, string(source), t.page)
		if err != nil {
			return fail(err)
		}
	}

	if err := b.o.sink.Write(ctx, job.name, out); err != nil {
		return fail(err)
	}

	a := &Artifact{
		Name:   job.name,
		Target: t.Name,
		Format: t.format.Name,
		Data:   out,
		Size:   int64(len(out)),
		Hash:   fileutil.Hash(out),
	}
	if job.doc != nil {
		a.SongID = job.doc.ID()
	}
	b.o.logger.Info("artifact written", "target", t.Name, "file", job.name, "bytes", a.Size)

	if b.o.store != nil {
		rec := StateRecord{Key: key, Fingerprint: fingerprint, Hash: a.Hash, Size: a.Size}
		if err := b.o.store.Save(ctx, rec); err != nil {
			b.warn("build state not saved for %s: %v", job.name, err)
		}
	}
	return res, a
}

// upToDate reports whether the recorded artifact can be kept. Any doubt,
// a store or sink error included, means it cannot.
func (b *build) upToDate(ctx context.Context, key, fingerprint string, job renderJob) (*Artifact, bool) {
	if b.o.store == nil {
		return nil, false
	}
	rec, ok, err := b.o.store.Lookup(ctx, key)
	if err != nil {
		b.warn("build state unreadable for %s, rendering: %v", job.name, err)
		return nil, false
	}
	if !ok || rec.Fingerprint != fingerprint {
		return nil, false
	}
	hash, ok, err := b.o.sink.Hash(ctx, job.name)
	if err != nil {
		b.warn("cannot check artifact %s, rendering: %v", job.name, err)
		return nil, false
	}
	if !ok || hash != rec.Hash {
		return nil, false
	}

	a := &Artifact{
		Name:    job.name,
		Target:  job.target.Name,
		Format:  job.target.format.Name,
		Size:    rec.Size,
		Hash:    rec.Hash,
		Skipped: true,
	}
	if job.doc != nil {
		a.SongID = job.doc.ID()
	}
	return a, true
}

// fingerprint covers everything an artifact depends on: the program, the
// target configuration and the rendered template output, which already
// reflects every participating song and template file.
func (b *build) fingerprint(t *resolvedTarget, name string, source []byte) (string, error) {
	cfg, err := json.Marshal(struct {
		Program  string
		Version  string
		Target   Target
		Format   string
		Template string
		Artifact string
		Page     *PageSettings
	}{b.o.cfg.program, b.o.cfg.version, t.Target, t.format.Name, t.template, name, t.page})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(cfg) + 1 + len(source))
	buf.Write(cfg)
	buf.WriteByte(0)
	buf.Write(source)
	return fileutil.Hash(buf.Bytes()), nil
}

// ---------------------------------------------------------------------------
// Workers
// ---------------------------------------------------------------------------

// runJobs calls fn for every index in [0, n) on a bounded worker pool.
// Jobs picked up after the build stopped or ctx ended are not run; the
// returned slice tells which ran.
func (b *build) runJobs(ctx context.Context, n int, fn func(int)) []bool {
	ran := make([]bool, n)
	if n == 0 {
		return ran
	}

	concurrency := min(ResolvePoolSize(b.o.cfg.workers), n)
	var wg sync.WaitGroup
	jobs := make(chan int, n)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if b.stop.Load() || ctx.Err() != nil {
					continue
				}
				ran[idx] = true
				fn(idx)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return ran
}
