package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitbackend "github.com/thiagokokada/gitgraph-go/internal/git/backend"
	"github.com/thiagokokada/gitgraph-go/internal/render"
	"github.com/thiagokokada/gitgraph-go/internal/theme"
)

func initRepo(t *testing.T, messages ...string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, msg := range messages {
		if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte(msg), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		if _, err := wt.Add("file.txt"); err != nil {
			t.Fatalf("add: %v", err)
		}
		when = when.Add(time.Minute)
		sig := &object.Signature{Name: "Alice", Email: "alice@example.com", When: when}
		if _, err := wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig}); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	return dir
}

func TestRunWritesText(t *testing.T) {
	t.Parallel()

	dir := initRepo(t, "first", "second")
	var out bytes.Buffer
	err := Run(context.Background(), RunConfig{
		RepoPath: dir,
		Backend:  gitbackend.KindNative,
		Log:      gitbackend.LogOptions{Limit: 10},
		Theme:    theme.Light,
		Format:   render.FormatText,
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "* ") || !strings.Contains(lines[0], "(HEAD -> master) second") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " first - Alice, 2024-01-01 00:01") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestRunWritesJSONFile(t *testing.T) {
	t.Parallel()

	dir := initRepo(t, "only")
	output := filepath.Join(t.TempDir(), "graph.json")
	err := Run(context.Background(), RunConfig{
		RepoPath: dir,
		Theme:    theme.Dark,
		Format:   render.FormatJSON,
		Output:   output,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc render.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(doc.Rows) != 1 || doc.Rows[0].Color != theme.DarkTheme.Lanes[0] {
		t.Fatalf("unexpected rows: %+v", doc.Rows)
	}
}

func TestRunRejectsMissingRepository(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), RunConfig{RepoPath: t.TempDir(), Stdout: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected error for directory without repository")
	}
}
