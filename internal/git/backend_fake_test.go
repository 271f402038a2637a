package git

import (
	"context"
	"errors"
	"io"

	gitbackend "github.com/thiagokokada/gitgraph-go/internal/git/backend"
)

type fakeBackend struct {
	repoPath string

	headStateFunc      func() (hash string, headName string, ok bool, err error)
	startLogStreamFunc func(opts gitbackend.LogOptions) (gitbackend.LogStream, error)

	lastOptions gitbackend.LogOptions
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) StartLogStream(_ context.Context, opts gitbackend.LogOptions) (gitbackend.LogStream, error) {
	f.lastOptions = opts
	if f.startLogStreamFunc != nil {
		return f.startLogStreamFunc(opts)
	}
	return nil, errors.New("unexpected StartLogStream call")
}

func (f *fakeBackend) HeadState() (hash string, headName string, ok bool, err error) {
	if f.headStateFunc != nil {
		return f.headStateFunc()
	}
	return "", "", false, errors.New("unexpected HeadState call")
}

type fakeStream struct {
	commits []*gitbackend.Commit
	err     error
	closed  bool
}

func (s *fakeStream) Next() (*gitbackend.Commit, error) {
	if len(s.commits) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.commits[0]
	s.commits = s.commits[1:]
	return c, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}
