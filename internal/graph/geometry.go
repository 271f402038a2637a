package graph

import (
	"strconv"
	"strings"
)

const (
	// CornerRadius is the largest radius used for shifts and merge bends.
	CornerRadius = 6
	NodeRadius   = 4
	// Margin is added to the lane area when sizing the canvas.
	Margin = 40
)

// Dimensions are the pixel sizes of a single row.
type Dimensions struct {
	RowHeight float64 `json:"rowHeight" yaml:"row_height"`
	LaneWidth float64 `json:"laneWidth" yaml:"lane_width"`
}

var DefaultDimensions = Dimensions{RowHeight: 24, LaneWidth: 20}

// PathKind tells a renderer what a path represents.
type PathKind string

const (
	PathIncoming PathKind = "incoming" // top edge into the node
	PathContinue PathKind = "continue" // node down to its first parent, same column
	PathConverge PathKind = "converge" // node into a first-parent lane in another column
	PathAbsorb   PathKind = "absorb"   // duplicate lane folding into the node
	PathStraight PathKind = "straight"
	PathShift    PathKind = "shift"
	PathMerge    PathKind = "merge" // node out to a secondary parent lane
)

// Path is one drawable stroke in row-local coordinates, with D in SVG path
// syntax.
type Path struct {
	Kind  PathKind `json:"kind"`
	Color Color    `json:"color"`
	D     string   `json:"d"`
}

// Node is the commit marker.
type Node struct {
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
	Color  Color   `json:"color"`
}

// Geometry is everything needed to draw one row. Top is filled by
// Layout.Geometry; Build leaves it at zero.
type Geometry struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Paths  []Path  `json:"paths"`
	Node   Node    `json:"node"`
}

// Build computes the strokes for a single row. It does not look at any other
// row, so rows can be built in any order.
func Build(row Row, d Dimensions) Geometry {
	h := d.RowHeight
	mid := h / 2
	radius := min(CornerRadius, mid)
	colX := func(col int) float64 { return float64(col+1) * d.LaneWidth }

	nodeX := colX(row.NodeColumn)
	paths := make([]Path, 0, len(row.Input)+len(row.Commit.Parents))
	for i, lane := range row.Input {
		x := colX(i)
		switch {
		case lane.ID == row.Commit.Hash && row.Matched && i == row.NodeColumn:
			paths = append(paths, Path{
				Kind:  PathIncoming,
				Color: lane.Color,
				D:     newPathData().move(x, 0).line(x, mid).String(),
			})
		case lane.ID == row.Commit.Hash:
			paths = append(paths, Path{
				Kind:  PathAbsorb,
				Color: lane.Color,
				D:     absorbPath(x, nodeX, mid, radius),
			})
		default:
			j := laneIndex(row.Output, lane.ID)
			if j < 0 {
				continue
			}
			if j == i {
				paths = append(paths, Path{
					Kind:  PathStraight,
					Color: lane.Color,
					D:     newPathData().move(x, 0).line(x, h).String(),
				})
				continue
			}
			paths = append(paths, Path{
				Kind:  PathShift,
				Color: lane.Color,
				D:     shiftPath(x, colX(j), h, radius),
			})
		}
	}

	if row.Continues {
		kind := PathContinue
		if row.ContinueColumn != row.NodeColumn {
			kind = PathConverge
		}
		paths = append(paths, Path{
			Kind:  kind,
			Color: row.Color,
			D:     connectorPath(nodeX, colX(row.ContinueColumn), h, radius),
		})
	}

	for _, parent := range row.Commit.Parents[min(1, len(row.Commit.Parents)):] {
		j := laneIndex(row.Output, parent)
		if j < 0 {
			continue
		}
		paths = append(paths, Path{
			Kind:  PathMerge,
			Color: row.Color,
			D:     connectorPath(nodeX, colX(j), h, radius),
		})
	}

	return Geometry{
		Height: h,
		Paths:  paths,
		Node: Node{
			Column: row.NodeColumn,
			X:      nodeX,
			Y:      mid,
			R:      NodeRadius,
			Color:  row.Color,
		},
	}
}

// connectorPath runs from the node at (x1, h/2) to the bottom edge at x2,
// turning a quarter arc over the target column.
func connectorPath(x1, x2, h, radius float64) string {
	mid := h / 2
	p := newPathData().move(x1, mid)
	if x1 == x2 {
		return p.line(x2, h).String()
	}
	dir, r := bend(x1, x2, radius)
	return p.
		line(x2-dir*r, mid).
		arc(r, dir > 0, x2, mid+r).
		line(x2, h).
		String()
}

// shiftPath moves a lane from x1 at the top edge to x2 at the bottom edge
// with two opposing arcs around the row's midline.
func shiftPath(x1, x2, h, radius float64) string {
	mid := h / 2
	dir, r := bend(x1, x2, radius)
	return newPathData().
		move(x1, 0).
		line(x1, mid-r).
		arc(r, dir < 0, x1+dir*r, mid).
		line(x2-dir*r, mid).
		arc(r, dir > 0, x2, mid+r).
		line(x2, h).
		String()
}

// absorbPath bends a duplicate lane from the top edge at x into the node.
func absorbPath(x, nodeX, mid, radius float64) string {
	p := newPathData().move(x, 0)
	if x == nodeX {
		return p.line(x, mid).String()
	}
	dir, r := bend(x, nodeX, radius)
	return p.
		line(x, mid-r).
		arc(r, dir < 0, x+dir*r, mid).
		line(nodeX, mid).
		String()
}

// bend returns the horizontal direction from x1 to x2 and a radius small
// enough that two bends fit between the columns.
func bend(x1, x2, radius float64) (dir float64, r float64) {
	dx := x2 - x1
	dir = 1
	if dx < 0 {
		dir = -1
		dx = -dx
	}
	return dir, min(radius, dx/2)
}

type pathData struct {
	b strings.Builder
}

func newPathData() *pathData {
	return &pathData{}
}

func (p *pathData) move(x, y float64) *pathData {
	p.cmd("M", x, y)
	return p
}

func (p *pathData) line(x, y float64) *pathData {
	p.cmd("L", x, y)
	return p
}

// arc appends a circular arc; sweep selects the clockwise direction in
// screen coordinates.
func (p *pathData) arc(r float64, sweep bool, x, y float64) *pathData {
	flag := 0.0
	if sweep {
		flag = 1
	}
	p.cmd("A", r, r, 0, 0, flag, x, y)
	return p
}

func (p *pathData) cmd(verb string, args ...float64) {
	if p.b.Len() > 0 {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(verb)
	for _, a := range args {
		p.b.WriteByte(' ')
		p.b.WriteString(strconv.FormatFloat(a, 'f', -1, 64))
	}
}

func (p *pathData) String() string {
	return p.b.String()
}
