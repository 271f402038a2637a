package server

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitgraph-go/internal/debounce"
)

const autoRefreshDebounceDelay = 350 * time.Millisecond

type watchState struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
}

func (s *Server) startWatcher() error {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()
	if s.watch.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	for path := range watchPaths(s.feed.RepoPath()) {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			err := errors.Join(err, watcher.Close())
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	debounce.Ensure(&s.watch.debounce, autoRefreshDebounceDelay, s.autoRefresh)
	s.watch.watcher = watcher
	go s.watchLoop(watcher)
	return nil
}

func (s *Server) stopWatcher() error {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()
	if s.watch.debounce != nil {
		s.watch.debounce.Stop()
		s.watch.debounce = nil
	}
	if s.watch.watcher == nil {
		return nil
	}
	err := s.watch.watcher.Close()
	s.watch.watcher = nil
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (s *Server) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			s.scheduleRefresh()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (s *Server) scheduleRefresh() {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()
	if s.watch.debounce == nil {
		return
	}
	slog.Debug("auto refresh scheduled")
	s.watch.debounce.Trigger()
}

func (s *Server) autoRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := s.Refresh(ctx); err != nil {
		slog.Error("auto refresh", slog.Any("error", err))
		s.publish(Message{Type: MessageTypeError, Data: err.Error()})
	}
}

// watchPaths returns the directories whose changes can move refs: the git
// directory itself (HEAD, packed-refs) and the loose ref directories below it.
// Repositories without a .git directory fall back to the root.
func watchPaths(root string) iter.Seq[string] {
	if root == "" {
		return slices.Values([]string(nil))
	}
	uniquePaths := map[string]struct{}{}
	appendUnique := func(p string) { uniquePaths[p] = struct{}{} }
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		appendUnique(root)
		return maps.Keys(uniquePaths)
	}
	appendUnique(gitDir)
	for _, sub := range []string{"refs/heads", "refs/remotes", "refs/tags"} {
		dir := filepath.Join(gitDir, filepath.FromSlash(sub))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			appendUnique(dir)
		}
	}
	return maps.Keys(uniquePaths)
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	return strings.Contains(filepath.ToSlash(name), "/logs/")
}
