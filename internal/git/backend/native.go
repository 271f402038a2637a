package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type native struct {
	repo *gitlib.Repository
	path string
}

// OpenNative opens the repository containing repoPath with go-git.
func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &native{repo: repo, path: root}, nil
}

func (n *native) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.path
}

func (n *native) HeadState() (hash string, headName string, ok bool, err error) {
	ref, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	headName = "HEAD"
	if ref.Name().IsBranch() {
		headName = ref.Name().Short()
	}
	return ref.Hash().String(), headName, true, nil
}

func (n *native) StartLogStream(ctx context.Context, opts LogOptions) (LogStream, error) {
	labels, err := n.refLabels()
	if err != nil {
		return nil, fmt.Errorf("read refs: %w", err)
	}
	logOpts := &gitlib.LogOptions{Order: gitlib.LogOrderCommitterTime}
	if opts.All {
		logOpts.All = true
	} else {
		ref, err := n.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD: %w", err)
		}
		logOpts.From = ref.Hash()
	}
	iter, err := n.repo.Log(logOpts)
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	return &nativeLogStream{ctx: ctx, iter: iter, labels: labels, limit: opts.Limit}, nil
}

// nativeLogStream reads the walk up to the limit on the first Next, then
// serves it children first.
type nativeLogStream struct {
	ctx     context.Context
	iter    object.CommitIter
	labels  map[plumbing.Hash][]string
	limit   int
	pending []*Commit
	loaded  bool
}

func (s *nativeLogStream) Next() (*Commit, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if !s.loaded {
		commits, err := s.load()
		if err != nil {
			return nil, err
		}
		s.pending = childrenFirst(commits)
		s.loaded = true
	}
	if len(s.pending) == 0 {
		return nil, io.EOF
	}
	c := s.pending[0]
	s.pending = s.pending[1:]
	return c, nil
}

func (s *nativeLogStream) load() ([]*Commit, error) {
	if s.iter == nil {
		return nil, nil
	}
	var commits []*Commit
	for s.limit <= 0 || len(commits) < s.limit {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		commits = append(commits, s.toCommit(c))
	}
	return commits, nil
}

func (s *nativeLogStream) toCommit(c *object.Commit) *Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &Commit{
		Hash:         c.Hash.String(),
		ParentHashes: parents,
		Author:       Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Author.When},
		Committer:    Signature{Name: c.Committer.Name, Email: c.Committer.Email, When: c.Committer.When},
		Refs:         s.labels[c.Hash],
		Message:      c.Message,
	}
}

func (s *nativeLogStream) Close() error {
	if s.iter != nil {
		s.iter.Close()
		s.iter = nil
	}
	return nil
}

// refLabels decorates commits the way `git log --decorate=short` does: HEAD
// first, then branches, remotes and tags in reference order.
func (n *native) refLabels() (map[plumbing.Hash][]string, error) {
	labels := map[plumbing.Hash][]string{}
	refs, err := n.repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		hash := ref.Hash()
		var label string
		switch {
		case name.IsBranch():
			label = name.Short()
		case name.IsRemote():
			label = name.Short()
			if strings.HasSuffix(label, "/HEAD") {
				return nil
			}
		case name.IsTag():
			label = "tag: " + name.Short()
			if peeled, ok := n.peelTagCommitHash(hash); ok {
				hash = peeled
			}
		default:
			return nil
		}
		labels[hash] = append(labels[hash], label)
		return nil
	})
	if err != nil {
		return nil, err
	}

	head, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return labels, nil
		}
		return nil, err
	}
	label := "HEAD"
	if head.Name().IsBranch() {
		branch := head.Name().Short()
		label = "HEAD -> " + branch
		// The branch is folded into the HEAD label.
		labels[head.Hash()] = removeLabel(labels[head.Hash()], branch)
	}
	labels[head.Hash()] = append([]string{label}, labels[head.Hash()]...)
	return labels, nil
}

func (n *native) peelTagCommitHash(hash plumbing.Hash) (plumbing.Hash, bool) {
	// Lightweight tags point directly at a commit; annotated tags point at a tag object.
	if _, err := n.repo.CommitObject(hash); err == nil {
		return hash, true
	}
	cur := hash
	for range 8 {
		tag, err := n.repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}

func removeLabel(labels []string, label string) []string {
	out := labels[:0]
	for _, l := range labels {
		if l != label {
			out = append(out, l)
		}
	}
	return out
}
