package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - gitgraph</title>
<style>
body { margin: 0; background: {{.Background}}; color: {{.Foreground}}; font: 12px ui-monospace, SFMono-Regular, Menlo, monospace; }
#graph { display: block; }
.row:hover { cursor: pointer; }
.detail { font-size: 11px; }
</style>
</head>
<body>
<svg id="graph" xmlns="http://www.w3.org/2000/svg"></svg>
<script>
const NS = "http://www.w3.org/2000/svg";
const expanded = new Map();
const muted = {{.Muted}};
let doc = null;

function el(name, attrs) {
  const node = document.createElementNS(NS, name);
  for (const [k, v] of Object.entries(attrs)) node.setAttribute(k, v);
  return node;
}

function draw(d) {
  doc = d;
  const svg = document.getElementById("graph");
  svg.replaceChildren();
  svg.setAttribute("width", d.width + 640);
  svg.setAttribute("height", d.height);
  d.geometry.forEach((g, i) => {
    const row = d.rows[i];
    const group = el("g", {class: "row", transform: "translate(0 " + g.top + ")"});
    for (const p of g.paths) {
      group.append(el("path", {d: p.d, stroke: p.color, "stroke-width": 2, fill: "none"}));
    }
    group.append(el("circle", {cx: g.node.x, cy: g.node.y, r: g.node.r, fill: "none", stroke: g.node.color, "stroke-width": 2}));
    const c = row.commit;
    const text = el("text", {x: d.width, y: g.node.y, "dominant-baseline": "central", fill: "currentColor"});
    const refs = c.refs.length ? " (" + c.refs.join(", ") + ")" : "";
    const hash = el("tspan", {fill: muted});
    hash.textContent = c.hash.slice(0, 7);
    text.append(hash, refs + " " + c.message);
    const by = [c.author, shortDate(c.date)].filter(Boolean).join(", ");
    if (by) {
      const span = el("tspan", {fill: muted});
      span.textContent = " - " + by;
      text.append(span);
    }
    group.append(text);
    if (expanded.has(c.hash)) {
      details(group, d.width, g.node.y, c);
    }
    group.addEventListener("click", () => toggle(row.commit.hash));
    svg.append(group);
  });
}

function shortDate(date) {
  return date ? date.slice(0, 16).replace("T", " ") : "";
}

// details fills an expanded row around its subject line.
function details(group, x, y, c) {
  const author = c.author + (c.email ? " <" + c.email + ">" : "");
  const body = (c.body || "").split("\n")[0];
  const lines = [
    [-2, "commit", c.hash],
    [-1, "parents", c.parents.map((p) => p.slice(0, 7)).join(" ")],
    [1, "author", author.trim()],
    [2, "date", c.date],
    [3, "", body],
  ];
  for (const [n, label, value] of lines) {
    if (!value) continue;
    const t = el("text", {class: "detail", x: x + 8, y: y + n * {{.DetailLineHeight}}, "dominant-baseline": "central", fill: "currentColor"});
    if (label) {
      const k = el("tspan", {fill: muted});
      k.textContent = label + " ";
      t.append(k);
    }
    t.append(value);
    group.append(t);
  }
}

function query() {
  return [...expanded].map(([h, px]) => "expand=" + encodeURIComponent(h + ":" + px)).join("&");
}

async function load() {
  const res = await fetch("/api/graph?" + query());
  if (res.ok) draw(await res.json());
}

function toggle(hash) {
  if (expanded.has(hash)) expanded.delete(hash); else expanded.set(hash, {{.ExpandedHeight}});
  load();
}

function connect() {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/api/ws");
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type !== "graph") return;
    if (expanded.size === 0) draw(msg.data); else load();
  };
  ws.onclose = () => setTimeout(connect, 2000);
}

load();
connect();
</script>
</body>
</html>
`))

type indexData struct {
	Title            string
	Background       string
	Foreground       string
	Muted            string
	ExpandedHeight   float64
	DetailLineHeight float64
}

// detailLineHeight fits two detail lines above the subject and three below it
// inside expandedRowHeight.
const (
	expandedRowHeight = 96
	detailLineHeight  = 14
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	bg, fg, muted := s.cfg.Theme.Background, s.cfg.Theme.Foreground, s.cfg.Theme.Muted
	if bg == "" {
		bg = "white"
	}
	if fg == "" {
		fg = "black"
	}
	if muted == "" {
		muted = fg
	}
	data := indexData{
		Title:            filepath.Base(s.feed.RepoPath()),
		Background:       bg,
		Foreground:       fg,
		Muted:            muted,
		ExpandedHeight:   expandedRowHeight,
		DetailLineHeight: detailLineHeight,
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("write index", slog.Any("error", err))
	}
}
