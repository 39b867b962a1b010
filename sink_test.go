package songbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-songbook/internal/fileutil"
)

func TestDirSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewDirSink(dir)

	if _, ok, err := sink.Hash(ctx, "book.html"); err != nil || ok {
		t.Fatalf("Hash() before write = ok %v, err %v; want missing", ok, err)
	}

	data := []byte("<h1>Songs</h1>")
	if err := sink.Write(ctx, "nested/book.html", data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "nested", "book.html"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("artifact = %q, want %q", got, data)
	}

	hash, ok, err := sink.Hash(ctx, "nested/book.html")
	if err != nil || !ok {
		t.Fatalf("Hash() = ok %v, err %v", ok, err)
	}
	if hash != fileutil.Hash(data) {
		t.Errorf("Hash() = %s, want %s", hash, fileutil.Hash(data))
	}

	// Overwrite is deterministic.
	if err := sink.Write(ctx, "nested/book.html", data); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	again, _, _ := sink.Hash(ctx, "nested/book.html")
	if again != hash {
		t.Error("hash changed after rewriting identical bytes")
	}
}

func TestDirSink_RejectsEscapingNames(t *testing.T) {
	t.Parallel()

	sink := NewDirSink(t.TempDir())
	for _, name := range []string{"../x.html", "/abs.html", ""} {
		if err := sink.Write(context.Background(), name, []byte("x")); !errors.Is(err, ErrArtifactWrite) {
			t.Errorf("Write(%q) error = %v, want ErrArtifactWrite", name, err)
		}
	}
}

func TestMemorySink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := NewMemorySink()

	data := []byte("\\begin{song}")
	if err := sink.Write(ctx, "b.tex", data); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(ctx, "a.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	// The sink keeps its own copy.
	data[0] = 'X'
	got, ok := sink.Get("b.tex")
	if !ok || string(got) != "\\begin{song}" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	if diff := cmp.Diff([]string{"a.json", "b.tex"}, sink.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	hash, ok, err := sink.Hash(ctx, "a.json")
	if err != nil || !ok || hash != fileutil.Hash([]byte("{}")) {
		t.Errorf("Hash() = %q, %v, %v", hash, ok, err)
	}

	if _, ok, _ := sink.Hash(ctx, "missing.html"); ok {
		t.Error("Hash() found an artifact never written")
	}
}
