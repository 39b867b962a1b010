package songbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/alnah/go-songbook/internal/fileutil"
)

// ArtifactSink receives rendered artifacts. Hash reports the BLAKE3 hash
// of what the sink currently holds under name, so incremental builds can
// check an artifact is still in place before skipping it.
type ArtifactSink interface {
	Write(ctx context.Context, name string, data []byte) error
	Hash(ctx context.Context, name string) (hash string, ok bool, err error)
}

// Compile-time interface checks
var (
	_ ArtifactSink = (*DirSink)(nil)
	_ ArtifactSink = (*MemorySink)(nil)
)

// DirSink writes artifacts below a directory. Each write is atomic.
type DirSink struct {
	dir string
}

// NewDirSink creates a sink rooted at dir. The directory is created on
// first write.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Path returns where an artifact is written.
func (s *DirSink) Path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// Write stores data under name.
func (s *DirSink) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateArtifactName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	if err := fileutil.WriteFileAtomic(s.Path(name), data); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	return nil
}

// Hash hashes the artifact on disk. A missing file is reported as !ok,
// not as an error.
func (s *DirSink) Hash(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f, err := os.Open(s.Path(name)) // #nosec G304 -- name validated on write
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	defer func() { _ = f.Close() }()

	sum, err := fileutil.HashReader(f)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	return sum, true, nil
}

// MemorySink keeps artifacts in memory. Safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Write stores a copy of data under name.
func (s *MemorySink) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = bytes.Clone(data)
	return nil
}

// Hash hashes the stored artifact.
func (s *MemorySink) Hash(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	if !ok {
		return "", false, nil
	}
	return fileutil.Hash(data), true, nil
}

// Get returns a copy of the artifact stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	return bytes.Clone(data), ok
}

// Names returns the stored artifact names, sorted.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
