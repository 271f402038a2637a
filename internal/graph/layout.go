package graph

// Geometry builds every row, stacking them vertically. heights overrides the
// row height for individual row indexes, e.g. to make room for an inline
// detail panel; every other row uses d.RowHeight.
func (l Layout) Geometry(d Dimensions, heights map[int]float64) []Geometry {
	out := make([]Geometry, len(l.Rows))
	top := 0.0
	for i, row := range l.Rows {
		rd := d
		if h, ok := heights[i]; ok && h > 0 {
			rd.RowHeight = h
		}
		g := Build(row, rd)
		g.Top = top
		top += g.Height
		out[i] = g
	}
	return out
}

// TotalWidth is the canvas width needed for the widest row.
func (l Layout) TotalWidth(d Dimensions) float64 {
	return float64(l.MaxLanes)*d.LaneWidth + Margin
}

// TotalHeight is the stacked height of all rows, honoring overrides.
func (l Layout) TotalHeight(d Dimensions, heights map[int]float64) float64 {
	total := float64(len(l.Rows)) * d.RowHeight
	for i, h := range heights {
		if i < 0 || i >= len(l.Rows) || h <= 0 {
			continue
		}
		total += h - d.RowHeight
	}
	return total
}

// RowIndex returns the row holding the commit hash.
func (l Layout) RowIndex(hash string) (int, bool) {
	for i, row := range l.Rows {
		if row.Commit.Hash == hash {
			return i, true
		}
	}
	return 0, false
}

// Tokens renders the row the way `git log --graph` prints it in its simplest
// form: "*" at the node column and "|" for every other occupied lane.
func (r Row) Tokens() []string {
	width := max(len(r.Input), r.NodeColumn+1)
	tokens := make([]string, width)
	for i := range tokens {
		switch {
		case i == r.NodeColumn:
			tokens[i] = "*"
		case i < len(r.Input) && r.Input[i].ID != r.Commit.Hash:
			tokens[i] = "|"
		default:
			tokens[i] = " "
		}
	}
	return tokens
}
