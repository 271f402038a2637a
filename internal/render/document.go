package render

import (
	"github.com/thiagokokada/gitgraph-go/internal/graph"
	"github.com/thiagokokada/gitgraph-go/internal/theme"
)

// Options control how a layout is drawn.
type Options struct {
	Theme      theme.Theme
	Dimensions graph.Dimensions
	// Heights overrides the height of individual rows by index.
	Heights map[int]float64
	// Color enables ANSI colors in terminal output.
	Color bool
}

func (o Options) dimensions() graph.Dimensions {
	d := o.Dimensions
	if d.RowHeight <= 0 {
		d.RowHeight = graph.DefaultDimensions.RowHeight
	}
	if d.LaneWidth <= 0 {
		d.LaneWidth = graph.DefaultDimensions.LaneWidth
	}
	return d
}

// Document is the serialized form of a laid out graph.
type Document struct {
	Dimensions graph.Dimensions `json:"dimensions"`
	MaxLanes   int              `json:"maxLanes"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Rows       []graph.Row      `json:"rows"`
	Geometry   []graph.Geometry `json:"geometry"`
}

func NewDocument(layout graph.Layout, opts Options) Document {
	d := opts.dimensions()
	rows := layout.Rows
	if rows == nil {
		rows = []graph.Row{}
	}
	return Document{
		Dimensions: d,
		MaxLanes:   layout.MaxLanes,
		Width:      layout.TotalWidth(d),
		Height:     layout.TotalHeight(d, opts.Heights),
		Rows:       rows,
		Geometry:   layout.Geometry(d, opts.Heights),
	}
}
