package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thiagokokada/gitgraph-go/internal/buildinfo"
	"github.com/thiagokokada/gitgraph-go/internal/git"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
	"github.com/thiagokokada/gitgraph-go/internal/render"
)

// Handler returns the HTTP routes. It also starts the websocket broadcaster.
func (s *Server) Handler() http.Handler {
	s.startBroadcast()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /graph.svg", s.handleSVG)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	return mux
}

type infoResponse struct {
	RepoPath string         `json:"repoPath"`
	Head     git.HeadInfo   `json:"head"`
	Commits  int            `json:"commits"`
	MaxLanes int            `json:"maxLanes"`
	Limit    int            `json:"limit"`
	All      bool           `json:"all"`
	Updated  time.Time      `json:"updated"`
	Build    buildinfo.Info `json:"build"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSONBytes(w, snap.logJSON)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	heights, err := parseExpand(r.URL.Query()["expand"], snap.layout)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(heights) == 0 {
		writeJSONBytes(w, snap.graphJSON)
		return
	}
	writeJSON(w, render.NewDocument(snap.layout, s.renderOptions(heights)))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	heights, err := parseExpand(r.URL.Query()["expand"], snap.layout)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := render.SVG(&buf, snap.layout, s.renderOptions(heights)); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("write svg", slog.Any("error", err))
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, infoResponse{
		RepoPath: s.feed.RepoPath(),
		Head:     snap.head,
		Commits:  len(snap.commits),
		MaxLanes: snap.layout.MaxLanes,
		Limit:    s.cfg.Log.Limit,
		All:      s.cfg.Log.All,
		Updated:  snap.updated,
		Build:    buildinfo.Read(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if _, err := s.current(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade", slog.Any("error", err))
		return
	}
	c := &client{conn: conn}

	// Hold the client lock until the initial state is written so a concurrent
	// broadcast can't be overtaken by an older snapshot.
	c.mu.Lock()
	n := s.addClient(c)
	s.mu.RLock()
	graphJSON := s.snap.graphJSON
	s.mu.RUnlock()
	initial, err := json.Marshal(Message{Type: MessageTypeGraph, Data: json.RawMessage(graphJSON)})
	if err == nil {
		err = c.writeLocked(initial)
	}
	c.mu.Unlock()
	slog.Debug("websocket client connected", slog.Int("clients", n))
	if err != nil {
		slog.Debug("websocket initial state", slog.Any("error", err))
		s.removeClient(c)
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.removeClient(c)
			return
		}
	}
}

// maxExpandHeight bounds a single row override so the document stays finite.
const maxExpandHeight = 4096

// parseExpand reads "hash:height" pairs, given as repeated parameters or
// comma separated. Hashes not present in the layout are ignored.
func parseExpand(values []string, layout graph.Layout) (map[int]float64, error) {
	var heights map[int]float64
	for _, value := range values {
		for item := range strings.SplitSeq(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			hash, rawHeight, ok := strings.Cut(item, ":")
			if !ok || hash == "" {
				return nil, fmt.Errorf("invalid expand %q: want hash:height", item)
			}
			h, err := strconv.ParseFloat(rawHeight, 64)
			if err != nil || math.IsNaN(h) || h <= 0 || h > maxExpandHeight {
				return nil, fmt.Errorf("invalid expand height %q", rawHeight)
			}
			idx, found := layout.RowIndex(hash)
			if !found {
				continue
			}
			if heights == nil {
				heights = make(map[int]float64)
			}
			heights[idx] = h
		}
	}
	return heights, nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); err != nil {
		slog.Debug("write error response", slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	writeJSONBytes(w, data)
}

func writeJSONBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		slog.Debug("write response", slog.Any("error", err))
	}
}
