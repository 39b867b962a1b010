package songbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestOSReader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.cho"), []byte("{title: A}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		reader  OSReader
		path    string
		want    string
		wantErr error
	}{
		{"relative to base dir", OSReader{BaseDir: dir}, "a.cho", "{title: A}\n", nil},
		{"absolute ignores base dir", OSReader{BaseDir: "/nowhere"}, filepath.Join(dir, "a.cho"), "{title: A}\n", nil},
		{"missing file", OSReader{BaseDir: dir}, "missing.cho", "", ErrSourceRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.reader.ReadSource(context.Background(), tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadSource() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadSource() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFSReader(t *testing.T) {
	t.Parallel()

	r := NewFSReader(fstest.MapFS{
		"songs/a.cho": {Data: []byte("[C]la")},
	})

	got, err := r.ReadSource(context.Background(), "songs/./a.cho")
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if string(got) != "[C]la" {
		t.Errorf("ReadSource() = %q", got)
	}

	if _, err := r.ReadSource(context.Background(), "songs/b.cho"); !errors.Is(err, ErrSourceRead) {
		t.Errorf("missing file error = %v, want ErrSourceRead", err)
	}
}

func TestReadersHonorCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	readers := map[string]SourceReader{
		"os": OSReader{},
		"fs": NewFSReader(fstest.MapFS{"a": {Data: []byte("x")}}),
	}
	for name, r := range readers {
		if _, err := r.ReadSource(ctx, "a"); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: error = %v, want context.Canceled", name, err)
		}
	}
}
