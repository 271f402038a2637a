package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "graph.yaml", `
limit: 250
all: true
backend: cli
mode: dark
row_height: 32
palette:
  - "#111111"
  - ""
  - "#222222"
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Limit != 250 || f.Backend != "cli" || f.Mode != "dark" {
		t.Fatalf("unexpected config: %+v", f)
	}
	if f.All == nil || !*f.All {
		t.Fatalf("expected all=true, got %v", f.All)
	}
	d := f.Dimensions(graph.DefaultDimensions)
	if d.RowHeight != 32 || d.LaneWidth != graph.DefaultDimensions.LaneWidth {
		t.Fatalf("unexpected dimensions: %+v", d)
	}
	if got := f.LanePalette(); len(got) != 2 || got[1] != "#222222" {
		t.Fatalf("unexpected palette: %v", got)
	}
}

func TestLoadTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "graph.toml", `
limit = 50
lane_width = 14
addr = "127.0.0.1:9000"
watch = false
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Limit != 50 || f.LaneWidth != 14 || f.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected config: %+v", f)
	}
	if f.Watch == nil || *f.Watch {
		t.Fatalf("expected watch=false, got %v", f.Watch)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "graph.yaml", "limit: -1\nformat: png\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"limit", "png"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, _, ok, err := Find(dir); err != nil || ok {
		t.Fatalf("expected no config, got ok=%v err=%v", ok, err)
	}
	writeFile(t, dir, ".gitgraph.toml", "limit = 7\n")
	writeFile(t, dir, ".gitgraph.yml", "limit: 9\n")
	f, path, ok, err := Find(dir)
	if err != nil || !ok {
		t.Fatalf("expected config, got ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != ".gitgraph.yml" || f.Limit != 9 {
		t.Fatalf("expected .gitgraph.yml with limit 9, got %s %+v", path, f)
	}
}

func TestFindWalksUpToRepositoryRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, outer, ".gitgraph.yaml", "limit: 3\n")
	root := filepath.Join(outer, "repo")
	sub := filepath.Join(root, "pkg", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// A worktree checkout has a .git file rather than a directory.
	writeFile(t, root, ".git", "gitdir: /elsewhere\n")

	if _, path, ok, err := Find(sub); err != nil || ok {
		t.Fatalf("expected the search to stop at the repository root, got %s ok=%v err=%v", path, ok, err)
	}

	writeFile(t, root, ".gitgraph.toml", "limit = 11\n")
	f, path, ok, err := Find(sub)
	if err != nil || !ok {
		t.Fatalf("expected config from repository root, got ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, ".gitgraph.toml") || f.Limit != 11 {
		t.Fatalf("expected root config with limit 11, got %s %+v", path, f)
	}

	writeFile(t, filepath.Join(root, "pkg"), ".gitgraph.yml", "limit: 5\n")
	if f, _, _, err := Find(sub); err != nil || f.Limit != 5 {
		t.Fatalf("expected nearest config to win, got %+v err=%v", f, err)
	}
}
