package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type testRepo struct {
	dir  string
	repo *gitlib.Repository
	wt   *gitlib.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
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
	return &testRepo{dir: dir, repo: repo, wt: wt, when: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *testRepo) commit(t *testing.T, msg string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()
	if err := os.WriteFile(filepath.Join(r.dir, "file.txt"), []byte(msg), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := r.wt.Add("file.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	r.when = r.when.Add(time.Hour)
	sig := &object.Signature{Name: "Alice", Email: "alice@example.com", When: r.when}
	hash, err := r.wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig, Parents: parents})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func readAll(t *testing.T, stream LogStream) []*Commit {
	t.Helper()
	defer stream.Close()
	var out []*Commit
	for {
		c, err := stream.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		out = append(out, c)
	}
}

func TestNativeLogStream(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit(t, "first\n")
	second := r.commit(t, "second\n")
	merge := r.commit(t, "merge\n", second, first)
	if _, err := r.repo.CreateTag("v1", first, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}

	b, err := OpenNative(r.dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	stream, err := b.StartLogStream(context.Background(), LogOptions{All: true})
	if err != nil {
		t.Fatalf("StartLogStream: %v", err)
	}
	commits := readAll(t, stream)
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}
	if commits[0].Hash != merge.String() || commits[2].Hash != first.String() {
		t.Fatalf("unexpected order: %s %s %s", commits[0].Hash, commits[1].Hash, commits[2].Hash)
	}
	if !slices.Equal(commits[0].ParentHashes, []string{second.String(), first.String()}) {
		t.Fatalf("unexpected merge parents: %#v", commits[0].ParentHashes)
	}
	if !slices.Equal(commits[0].Refs, []string{"HEAD -> master"}) {
		t.Fatalf("unexpected head refs: %#v", commits[0].Refs)
	}
	if !slices.Equal(commits[2].Refs, []string{"tag: v1"}) {
		t.Fatalf("unexpected tag refs: %#v", commits[2].Refs)
	}
	if commits[1].Author.Name != "Alice" || commits[1].Message != "second\n" {
		t.Fatalf("unexpected commit: %#v", commits[1])
	}

	hash, name, ok, err := b.HeadState()
	if err != nil || !ok || hash != merge.String() || name != "master" {
		t.Fatalf("unexpected head state: %s %s %v %v", hash, name, ok, err)
	}
}

func TestNativeLogStreamLimit(t *testing.T) {
	r := newTestRepo(t)
	r.commit(t, "first\n")
	r.commit(t, "second\n")

	b, err := OpenNative(r.dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	stream, err := b.StartLogStream(context.Background(), LogOptions{Limit: 1})
	if err != nil {
		t.Fatalf("StartLogStream: %v", err)
	}
	if got := readAll(t, stream); len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}
}

func TestNativeLogStreamChildrenBeforeSkewedParent(t *testing.T) {
	r := newTestRepo(t)
	base := r.when
	r.when = base.Add(9 * time.Hour)
	root := r.commit(t, "root\n")
	head, err := r.repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}

	// side is committed with a clock that is behind its parent.
	r.when = base
	side := r.commit(t, "side\n")
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("side"), side)); err != nil {
		t.Fatalf("create side branch: %v", err)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(head.Name(), root)); err != nil {
		t.Fatalf("reset branch: %v", err)
	}
	r.when = base.Add(4 * time.Hour)
	tip := r.commit(t, "tip\n", root)

	b, err := OpenNative(r.dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	stream, err := b.StartLogStream(context.Background(), LogOptions{All: true})
	if err != nil {
		t.Fatalf("StartLogStream: %v", err)
	}
	got := hashes(readAll(t, stream))
	if len(got) != 3 || got[2] != root.String() {
		t.Fatalf("expected root last, got %v", got)
	}
	if !slices.Contains(got[:2], side.String()) || !slices.Contains(got[:2], tip.String()) {
		t.Fatalf("expected both children before root, got %v", got)
	}
}

func TestNativeHeadStateEmptyRepository(t *testing.T) {
	r := newTestRepo(t)
	b, err := OpenNative(r.dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	_, _, ok, err := b.HeadState()
	if err != nil || ok {
		t.Fatalf("expected no HEAD without error, got ok=%v err=%v", ok, err)
	}
}
