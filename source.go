package songbook

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// SourceReader loads song and preface sources.
type SourceReader interface {
	ReadSource(ctx context.Context, path string) ([]byte, error)
}

// Compile-time interface checks
var (
	_ SourceReader = OSReader{}
	_ SourceReader = (*FSReader)(nil)
)

// OSReader reads sources from the local filesystem. Relative paths are
// resolved against BaseDir when it is set.
type OSReader struct {
	BaseDir string
}

// ReadSource reads the file at p.
func (r OSReader) ReadSource(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.BaseDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(r.BaseDir, p)
	}
	data, err := os.ReadFile(p) // #nosec G304 -- song paths come from the manifest
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	return data, nil
}

// FSReader reads sources from an fs.FS, typically embedded songs or a
// fstest.MapFS in tests. Paths use forward slashes.
type FSReader struct {
	FS fs.FS
}

// NewFSReader creates an FSReader over fsys.
func NewFSReader(fsys fs.FS) *FSReader {
	return &FSReader{FS: fsys}
}

// ReadSource reads p from the underlying filesystem.
func (r *FSReader) ReadSource(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := path.Clean(filepath.ToSlash(p))
	data, err := fs.ReadFile(r.FS, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	return data, nil
}
