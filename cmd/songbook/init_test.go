package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-songbook/internal/config"
)

func TestRunInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := newTestEnv(nil)
	if err := runInit([]string{dir}, env.Environment); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	cfg, err := config.LoadConfig(filepath.Join(dir, "songbook.yaml"))
	if err != nil {
		t.Fatalf("written project does not load: %v", err)
	}
	if cfg.Book.Title != "My Songbook" || len(cfg.Targets) != 3 {
		t.Errorf("project = %+v", cfg)
	}
	songs, err := cfg.ResolveSongs(os.DirFS(dir))
	if err != nil || len(songs) != 1 {
		t.Errorf("ResolveSongs() = %v, %v; want the example song", songs, err)
	}
	if !strings.Contains(env.stdout.String(), "amazing-grace.cho") {
		t.Errorf("stdout = %q", env.stdout)
	}
}

func TestRunInit_Existing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	project := filepath.Join(dir, "songbook.yaml")
	if err := os.WriteFile(project, []byte("songs: [a.cho]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runInit([]string{dir}, newTestEnv(nil).Environment)
	if !errors.Is(err, ErrProjectExists) {
		t.Fatalf("runInit() error = %v, want ErrProjectExists", err)
	}

	if err := runInit([]string{dir, "--force"}, newTestEnv(nil).Environment); err != nil {
		t.Fatalf("runInit(--force) error = %v", err)
	}
	data, err := os.ReadFile(project)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "My Songbook") {
		t.Errorf("--force did not overwrite: %s", data)
	}
}

// The starter project builds as soon as it is written, minus its PDF target.
func TestRunInit_ThenBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := runInit([]string{dir}, newTestEnv(nil).Environment); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv(nil)
	args := []string{"build", filepath.Join(dir, "songbook.yaml"), "--target", "web", "--target", "data"}
	if code := runMain(context.Background(), args, env.Environment); code != ExitSuccess {
		t.Fatalf("exit = %d\nstderr: %s", code, env.stderr)
	}
	for _, name := range []string{"songbook.html", "songbook.json"} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
