package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thiagokokada/gitgraph-go/internal/git"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
	"github.com/thiagokokada/gitgraph-go/internal/render"
	"github.com/thiagokokada/gitgraph-go/internal/theme"
)

const (
	refreshTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
	writeTimeout    = 5 * time.Second
	broadcastBuffer = 16
)

// Feed supplies commit records; *git.Service implements it.
type Feed interface {
	RepoPath() string
	Head() (git.HeadInfo, error)
	Commits(ctx context.Context, opts git.LogOptions) ([]graph.Commit, error)
}

type Config struct {
	Addr       string
	Log        git.LogOptions
	Theme      theme.Theme
	Dimensions graph.Dimensions
	Watch      bool
}

type MessageType string

const (
	MessageTypeGraph MessageType = "graph"
	MessageTypeError MessageType = "error"
)

type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

type snapshot struct {
	commits   []graph.Commit
	layout    graph.Layout
	head      git.HeadInfo
	logJSON   []byte
	graphJSON []byte
	updated   time.Time
	loaded    bool
}

// Server serves the commit graph over HTTP and pushes updates to websocket
// clients whenever the graph changes.
type Server struct {
	feed Feed
	cfg  Config

	// refreshMu serializes refreshes; mu guards the cached snapshot.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	snap      snapshot

	clientsMu sync.Mutex
	clients   map[*client]struct{}
	broadcast chan []byte
	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}

	upgrader websocket.Upgrader
	watch    watchState
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(data)
}

func (c *client) writeLocked(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func New(feed Feed, cfg Config) *Server {
	if len(cfg.Theme.Lanes) == 0 {
		cfg.Theme = cfg.Theme.WithLanes(graph.DefaultPalette)
	}
	if cfg.Dimensions.RowHeight <= 0 || cfg.Dimensions.LaneWidth <= 0 {
		cfg.Dimensions = graph.DefaultDimensions
	}
	return &Server{
		feed:      feed,
		cfg:       cfg,
		clients:   make(map[*client]struct{}),
		broadcast: make(chan []byte, broadcastBuffer),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// checkOrigin accepts pages served from the same host, and loopback pages
// when the server is reached over loopback (localhost vs 127.0.0.1).
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := (&url.URL{Host: r.Host}).Hostname()
	return isLoopback(u.Hostname()) && isLoopback(host)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) renderOptions(heights map[int]float64) render.Options {
	return render.Options{
		Theme:      s.cfg.Theme,
		Dimensions: s.cfg.Dimensions,
		Heights:    heights,
	}
}

// Refresh reloads commits from the feed and rebuilds the graph. It reports
// whether the graph changed; connected clients are notified only then.
func (s *Server) Refresh(ctx context.Context) (changed bool, err error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	commits, err := s.feed.Commits(ctx, s.cfg.Log)
	if err != nil {
		return false, fmt.Errorf("load commits: %w", err)
	}
	head, err := s.feed.Head()
	if err != nil {
		return false, fmt.Errorf("resolve HEAD: %w", err)
	}
	layout := graph.Assign(commits, s.cfg.Theme.Lanes)
	doc := render.NewDocument(layout, s.renderOptions(nil))
	graphJSON, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode graph: %w", err)
	}
	logJSON, err := json.Marshal(commits)
	if err != nil {
		return false, fmt.Errorf("encode log: %w", err)
	}

	s.mu.Lock()
	wasLoaded := s.snap.loaded
	changed = !wasLoaded || !bytes.Equal(s.snap.graphJSON, graphJSON)
	s.snap = snapshot{
		commits:   commits,
		layout:    layout,
		head:      head,
		logJSON:   logJSON,
		graphJSON: graphJSON,
		updated:   time.Now(),
		loaded:    true,
	}
	s.mu.Unlock()

	slog.Debug("graph refreshed",
		slog.Int("commits", len(commits)),
		slog.Int("maxLanes", layout.MaxLanes),
		slog.Bool("changed", changed),
		slog.Duration("elapsed", time.Since(start)),
	)
	// Clients only connect after the first load and get the snapshot then.
	if changed && wasLoaded {
		s.publish(Message{Type: MessageTypeGraph, Data: json.RawMessage(graphJSON)})
	}
	return changed, nil
}

func (s *Server) current(ctx context.Context) (snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap.loaded {
		return snap, nil
	}
	if _, err := s.Refresh(ctx); err != nil {
		return snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

func (s *Server) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encode message", slog.Any("error", err))
		return
	}
	select {
	case s.broadcast <- data:
	default:
		slog.Warn("broadcast channel full, dropping message", slog.String("type", string(msg.Type)))
	}
}

func (s *Server) startBroadcast() {
	s.startOnce.Do(func() {
		go s.broadcastLoop()
	})
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.broadcast:
			s.clientsMu.Lock()
			targets := make([]*client, 0, len(s.clients))
			for c := range s.clients {
				targets = append(targets, c)
			}
			s.clientsMu.Unlock()
			for _, c := range targets {
				if err := c.write(data); err != nil {
					slog.Debug("websocket write", slog.Any("error", err))
					s.removeClient(c)
				}
			}
		}
	}
}

func (s *Server) addClient(c *client) int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c] = struct{}{}
	return len(s.clients)
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	n := len(s.clients)
	s.clientsMu.Unlock()
	if !ok {
		return
	}
	if err := c.conn.Close(); err != nil {
		slog.Debug("websocket close", slog.Any("error", err))
	}
	slog.Debug("websocket client disconnected", slog.Int("clients", n))
}

// Close stops the watcher and disconnects every websocket client.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.stopWatcher()
		s.clientsMu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.clientsMu.Unlock()
		for _, c := range clients {
			s.removeClient(c)
		}
	})
	return err
}

// Run loads the graph, then serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("server close", slog.Any("error", err))
		}
	}()
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	if s.cfg.Watch {
		if err := s.startWatcher(); err != nil {
			slog.Error("auto refresh disabled", slog.Any("error", err))
		}
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving commit graph",
			slog.String("addr", s.cfg.Addr),
			slog.String("repo", s.feed.RepoPath()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
