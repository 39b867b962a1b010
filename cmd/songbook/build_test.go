package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-songbook/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunBuild - Project builds without a browser
// ---------------------------------------------------------------------------

func TestRunBuild_WritesArtifacts(t *testing.T) {
	t.Parallel()

	project := writeProject(t, dataProject, map[string]string{
		"songs/a.cho": graceSong,
		"songs/b.cho": shoreSong,
	})
	dir := filepath.Dir(project)

	env := newTestEnv(nil)
	code := runMain(context.Background(), []string{"build", "--config", project}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, want 0\nstderr: %s", code, env.stderr)
	}

	for _, name := range []string{"book.json", "book.html"} {
		path := filepath.Join(dir, "output", name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
		if !strings.Contains(env.stdout.String(), "Created "+path) {
			t.Errorf("stdout %q does not list %s", env.stdout, path)
		}
	}
	if !strings.Contains(env.stdout.String(), "2 songs, 2 artifacts (0 unchanged), 0 failed") {
		t.Errorf("stdout %q lacks the summary", env.stdout)
	}

	data, err := os.ReadFile(filepath.Join(dir, "output", "book.json"))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Book struct {
			Title string `json:"title"`
			Date  string `json:"date"`
		} `json:"book"`
		Songs []struct {
			Title string `json:"title"`
		} `json:"songs"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Book.Title != "Campfire" || out.Book.Date != "2024-03-01" {
		t.Errorf("book = %+v", out.Book)
	}
	if len(out.Songs) != 2 || out.Songs[0].Title != "Amazing Grace" {
		t.Errorf("songs = %+v", out.Songs)
	}
}

func TestRunBuild_OutputFlagAndTargetFilter(t *testing.T) {
	t.Parallel()

	project := writeProject(t, dataProject, map[string]string{"songs/a.cho": graceSong})
	out := filepath.Join(t.TempDir(), "elsewhere")

	env := newTestEnv(nil)
	code := runMain(context.Background(), []string{"build", project, "-o", out, "--target", "data", "-q"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit = %d\nstderr: %s", code, env.stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "book.json")); err != nil {
		t.Errorf("book.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "book.html")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("book.html should not be built, stat error = %v", err)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("quiet build printed %q", env.stdout)
	}
}

func TestRunBuild_UnknownTarget(t *testing.T) {
	t.Parallel()

	project := writeProject(t, dataProject, map[string]string{"songs/a.cho": graceSong})
	env := newTestEnv(nil)
	code := runMain(context.Background(), []string{"build", project, "--target", "print"}, env.Environment)
	if code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(env.stderr.String(), `unknown target: "print"`) {
		t.Errorf("stderr = %q", env.stderr)
	}
}

func TestRunBuild_ParseFailure(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"songs/a.cho": graceSong,
		"songs/b.cho": brokenSong,
	}

	t.Run("fail-fast", func(t *testing.T) {
		t.Parallel()

		project := writeProject(t, dataProject, files)
		env := newTestEnv(nil)
		code := runMain(context.Background(), []string{"build", project}, env.Environment)
		if code != ExitBuild {
			t.Fatalf("exit = %d, want %d\nstderr: %s", code, ExitBuild, env.stderr)
		}
		stderr := env.stderr.String()
		for _, want := range []string{"FAILED songs/b.cho", "build aborted", "songs/b.cho:2", "--best-effort"} {
			if !strings.Contains(stderr, want) {
				t.Errorf("stderr %q missing %q", stderr, want)
			}
		}
	})

	t.Run("best-effort", func(t *testing.T) {
		t.Parallel()

		project := writeProject(t, dataProject, files)
		env := newTestEnv(nil)
		code := runMain(context.Background(), []string{"build", project, "--best-effort"}, env.Environment)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want 0\nstderr: %s", code, env.stderr)
		}
		if !strings.Contains(env.stderr.String(), "warning: skipped song songs/b.cho") {
			t.Errorf("stderr = %q", env.stderr)
		}
		if !strings.Contains(env.stdout.String(), "1 failed") {
			t.Errorf("stdout = %q", env.stdout)
		}
	})

	t.Run("best-effort from environment", func(t *testing.T) {
		t.Parallel()

		project := writeProject(t, dataProject, files)
		env := newTestEnv(map[string]string{"SONGBOOK_FAILURE_POLICY": "best-effort"})
		if code := runMain(context.Background(), []string{"build", project}, env.Environment); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0\nstderr: %s", code, env.stderr)
		}
	})
}

func TestRunBuild_Incremental(t *testing.T) {
	t.Parallel()

	project := writeProject(t, dataProject, map[string]string{"songs/a.cho": graceSong})
	state := filepath.Join(t.TempDir(), "state.db")
	args := []string{"build", project, "--state", state}

	first := newTestEnv(nil)
	if code := runMain(context.Background(), args, first.Environment); code != ExitSuccess {
		t.Fatalf("first build exit = %d\nstderr: %s", code, first.stderr)
	}

	second := newTestEnv(nil)
	if code := runMain(context.Background(), args, second.Environment); code != ExitSuccess {
		t.Fatalf("second build exit = %d\nstderr: %s", code, second.stderr)
	}
	if !strings.Contains(second.stdout.String(), "(2 unchanged)") {
		t.Errorf("second build stdout = %q, want both artifacts unchanged", second.stdout)
	}

	forced := newTestEnv(nil)
	if code := runMain(context.Background(), append(args, "--no-state"), forced.Environment); code != ExitSuccess {
		t.Fatalf("forced build exit = %d", code)
	}
	if !strings.Contains(forced.stdout.String(), "(0 unchanged)") {
		t.Errorf("--no-state stdout = %q", forced.stdout)
	}
}

func TestRunBuild_CanceledContext(t *testing.T) {
	t.Parallel()

	project := writeProject(t, dataProject, map[string]string{"songs/a.cho": graceSong})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv(nil)
	if code := runMain(ctx, []string{"build", project}, env.Environment); code != ExitGeneral {
		t.Errorf("exit = %d, want %d\nstderr: %s", code, ExitGeneral, env.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flag precedence
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Build.Workers = 2
	cfg.Build.Timeout = "10s"

	flags := &buildFlags{workers: 6, timeout: "1m", bestEffort: true, maxFailures: 3, output: "out"}
	if err := mergeFlags(flags, cfg); err != nil {
		t.Fatal(err)
	}

	wantOut, _ := filepath.Abs("out")
	want := config.BuildConfig{Workers: 6, Timeout: "1m", FailurePolicy: "best-effort", MaxFailures: 3}
	if diff := cmp.Diff(want, cfg.Build); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
	if cfg.Output.Dir != wantOut {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, wantOut)
	}

	untouched := config.DefaultConfig()
	if err := mergeFlags(&buildFlags{}, untouched); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config.DefaultConfig(), untouched); diff != "" {
		t.Errorf("zero flags changed config (-want +got):\n%s", diff)
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, maxWorkers} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) = %v", n, err)
		}
	}
	for _, n := range []int{-1, maxWorkers + 1} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkers", n, err)
		}
	}
}

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"45s", 45 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"soon", 0, true},
		{"0s", 0, true},
		{"-5s", 0, true},
	}
	for _, tt := range tests {
		got, err := resolveTimeout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveTimeout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("resolveTimeout(%q) error = %v, want ErrInvalidTimeout", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("resolveTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProjectName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flag       string
		positional []string
		env        string
		want       string
	}{
		{"flag wins", "a.yaml", []string{"b.yaml"}, "c.yaml", "a.yaml"},
		{"positional", "", []string{"b.yaml"}, "c.yaml", "b.yaml"},
		{"environment", "", nil, "c.yaml", "c.yaml"},
		{"default", "", nil, "", config.DefaultName},
	}
	for _, tt := range tests {
		flags := &buildFlags{common: commonFlags{config: tt.flag}}
		if got := projectName(flags, tt.positional, &envConfig{ConfigPath: tt.env}); got != tt.want {
			t.Errorf("%s: projectName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
