package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	gitbackend "github.com/thiagokokada/gitgraph-go/internal/git/backend"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

// DefaultLimit is the number of commits fetched when no limit is configured.
const DefaultLimit = 1000

type LogOptions = gitbackend.LogOptions

// Service turns a backend's log into commit records for the layout.
type Service struct {
	// mu serializes log streams so concurrent refreshes don't race on the repository.
	mu sync.Mutex

	backend gitbackend.Backend
}

// HeadInfo describes the checked out commit.
type HeadInfo struct {
	Hash   string `json:"hash"`
	Branch string `json:"branch"`
	Valid  bool   `json:"valid"`
}

func Open(repoPath string, kind gitbackend.Kind) (*Service, error) {
	b, err := gitbackend.Open(kind, repoPath)
	if err != nil {
		return nil, err
	}
	return NewService(b), nil
}

func NewService(b gitbackend.Backend) *Service {
	return &Service{backend: b}
}

func (s *Service) RepoPath() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

func (s *Service) Head() (HeadInfo, error) {
	if s.backend == nil {
		return HeadInfo{}, fmt.Errorf("repository not initialized")
	}
	hash, name, ok, err := s.backend.HeadState()
	if err != nil {
		return HeadInfo{}, err
	}
	return HeadInfo{Hash: hash, Branch: name, Valid: ok}, nil
}

// Commits reads history newest-first. An unborn HEAD yields no commits.
func (s *Service) Commits(ctx context.Context, opts LogOptions) (commits []graph.Commit, err error) {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	if opts.Limit < 0 {
		opts.Limit = DefaultLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, ok, err := s.backend.HeadState()
	if err != nil {
		return nil, err
	}
	if !ok && !opts.All {
		return []graph.Commit{}, nil
	}

	start := time.Now()
	stream, err := s.backend.StartLogStream(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			slog.Debug("log stream close", slog.Any("error", cerr))
		}
	}()

	commits = make([]graph.Commit, 0, min(max(opts.Limit, 0), DefaultLimit))
	for {
		c, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("iterate commits: %w", err)
		}
		commits = append(commits, toRecord(c))
	}
	slog.Debug("Commits done",
		slog.Int("count", len(commits)),
		slog.Int("limit", opts.Limit),
		slog.Bool("all", opts.All),
		slog.Duration("elapsed", time.Since(start)),
	)
	return commits, nil
}

func toRecord(c *gitbackend.Commit) graph.Commit {
	parents := c.ParentHashes
	if parents == nil {
		parents = []string{}
	}
	refs := c.Refs
	if refs == nil {
		refs = []string{}
	}
	date := ""
	if !c.Author.When.IsZero() {
		date = c.Author.When.Format(time.RFC3339)
	}
	return graph.Commit{
		Hash:    c.Hash,
		Parents: parents,
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		Date:    date,
		Refs:    refs,
		Message: Subject(c.Message),
		Body:    Body(c.Message),
	}
}

// Subject returns the first non-empty line of a commit message.
func Subject(message string) string {
	for line := range strings.SplitSeq(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Body returns the message after its subject line, trimmed.
func Body(message string) string {
	message = strings.TrimLeft(message, " \t\r\n")
	_, rest, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(rest)
}

// ShortHash abbreviates a hash to seven characters.
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}
