package fileutil_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-songbook/internal/fileutil"
)

const (
	renderedBook = `<!DOCTYPE html><html><body><article class="song" id="song-1-wild-mountain-thyme">` +
		`<h2 class="song-title">Wild Mountain Thyme</h2></article></body></html>`
	songSource = "{title: Wild Mountain Thyme}\n{key: D}\n[D]Oh the summer [G]time is [D]coming\n"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Temp file extensions
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "html page for the PDF converter", extension: "html"},
		{name: "tex song body", extension: "tex"},
		{name: "chordpro source", extension: "cho"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "slash", extension: "html/../../book", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: `tex\..\book`, wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "html\x00.pdf", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) error = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Pages handed to the PDF converter
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		extension string
	}{
		{name: "rendered book", content: renderedBook, extension: "html"},
		{name: "empty page", content: "", extension: "html"},
		{name: "large songbook", content: strings.Repeat(renderedBook, 4096), extension: "html"},
		{name: "unicode lyrics", content: "<p>Là-haut sur la montagne, l’était un vieux chalet</p>", extension: "html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, cleanup, err := fileutil.WriteTempFile(tt.content, tt.extension)
			if err != nil {
				t.Fatalf("WriteTempFile() error = %v", err)
			}
			t.Cleanup(cleanup)

			base := filepath.Base(path)
			if !strings.HasPrefix(base, "songbook-") || !strings.HasSuffix(base, "."+tt.extension) {
				t.Errorf("temp file name = %q, want songbook-*.%s", base, tt.extension)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(got) != tt.content {
				t.Errorf("content mismatch: got %d bytes, want %d", len(got), len(tt.content))
			}
		})
	}
}

func TestWriteTempFile_CleanupRemovesPage(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile(renderedBook, "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	if !fileutil.FileExists(path) {
		t.Fatalf("temp page %s missing before cleanup", path)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Errorf("temp page %s still exists after cleanup", path)
	}
	// A second cleanup, as deferred calls may do, is harmless.
	cleanup()
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"", "../book.html", "tex\x00"} {
		path, cleanup, err := fileutil.WriteTempFile(renderedBook, ext)
		if err == nil {
			t.Errorf("WriteTempFile(%q) expected error", ext)
		}
		if path != "" || cleanup != nil {
			t.Errorf("WriteTempFile(%q) = %q, cleanup set %v; want nothing on error", ext, path, cleanup != nil)
		}
	}
}

// This test changes TMPDIR and cannot run in parallel.
func TestWriteTempFile_UnusableTempDir(t *testing.T) {
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "no-such-dir"))

	_, cleanup, err := fileutil.WriteTempFile(renderedBook, "html")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil || !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %v, want creating temp file error", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - Config and song lookups
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := filepath.Join(dir, "songbook.yaml")
	if err := os.WriteFile(config, []byte("book:\n  title: Campfire\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	songs := filepath.Join(dir, "songs")
	if err := os.Mkdir(songs, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "config file", path: config, want: true},
		{name: "songs directory", path: songs, want: false},
		{name: "missing song", path: filepath.Join(songs, "wild-mountain-thyme.cho"), want: false},
		{name: "empty path", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHash - Song and artifact fingerprints
// ---------------------------------------------------------------------------

func TestHash(t *testing.T) {
	t.Parallel()

	// Known BLAKE3-256 digest of the empty input.
	const empty = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"

	transposed := strings.Replace(songSource, "[G]", "[A]", 1)
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{name: "same source", a: songSource, b: songSource, equal: true},
		{name: "one chord changed", a: songSource, b: transposed},
		{name: "line ending changed", a: songSource, b: strings.ReplaceAll(songSource, "\n", "\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, b := fileutil.Hash([]byte(tt.a)), fileutil.Hash([]byte(tt.b))
			if (a == b) != tt.equal {
				t.Errorf("Hash equal = %v, want %v", a == b, tt.equal)
			}
			if len(a) != 64 {
				t.Errorf("hash length = %d, want 64", len(a))
			}
		})
	}

	if got := fileutil.Hash(nil); got != empty {
		t.Errorf("Hash(nil) = %s, want %s", got, empty)
	}
}

func TestHashReader(t *testing.T) {
	t.Parallel()

	got, err := fileutil.HashReader(strings.NewReader(songSource))
	if err != nil {
		t.Fatalf("HashReader() error = %v", err)
	}
	if want := fileutil.Hash([]byte(songSource)); got != want {
		t.Errorf("HashReader() = %s, want %s", got, want)
	}

	if _, err := fileutil.HashReader(iotest.ErrReader(errors.New("disk unplugged"))); err == nil {
		t.Error("HashReader() expected error from failing reader")
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Artifact writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	tests := []struct {
		name   string
		path   string
		writes [][]byte
	}{
		{name: "book artifact", path: filepath.Join(out, "web", "book.html"), writes: [][]byte{[]byte(renderedBook)}},
		{name: "song sheet in nested directory", path: filepath.Join(out, "sheets", "tex", "01-wild-mountain-thyme.tex"), writes: [][]byte{[]byte(`\section*{ 1. Wild Mountain Thyme }`)}},
		{name: "rebuild overwrites", path: filepath.Join(out, "print", "book.pdf"), writes: [][]byte{[]byte("%PDF-1.7 first"), []byte("%PDF-1.7 second")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, data := range tt.writes {
				if err := fileutil.WriteFileAtomic(tt.path, data); err != nil {
					t.Fatalf("WriteFileAtomic() error = %v", err)
				}
			}

			got, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if want := tt.writes[len(tt.writes)-1]; !bytes.Equal(got, want) {
				t.Errorf("content = %q, want %q", got, want)
			}

			entries, err := os.ReadDir(filepath.Dir(tt.path))
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			if diff := cmp.Diff([]string{filepath.Base(tt.path)}, names); diff != "" {
				t.Errorf("leftover files (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteFileAtomic_ParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sheets := filepath.Join(dir, "sheets")
	if err := os.WriteFile(sheets, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := fileutil.WriteFileAtomic(filepath.Join(sheets, "01-wild-mountain-thyme.tex"), []byte("x")); err == nil {
		t.Error("WriteFileAtomic() expected error when the parent is a file")
	}
}
