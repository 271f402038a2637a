package backend

import (
	"context"
	"fmt"
)

// Backend abstracts access to repository history.
//
// The CLI implementation shells out to the git executable; the native one
// reads the repository through go-git. Callers only see commits in log order.
type Backend interface {
	RepoPath() string
	StartLogStream(ctx context.Context, opts LogOptions) (LogStream, error)
	HeadState() (hash string, headName string, ok bool, err error)
}

type LogStream interface {
	Next() (*Commit, error)
	Close() error
}

type Kind string

const (
	KindNative Kind = "native"
	KindCLI    Kind = "cli"
)

// Open returns the backend of the requested kind.
func Open(kind Kind, repoPath string) (Backend, error) {
	switch kind {
	case KindCLI:
		return OpenCLI(repoPath)
	case KindNative, "":
		return OpenNative(repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
