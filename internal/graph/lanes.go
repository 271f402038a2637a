package graph

// Assigner folds commits into rows one at a time.
//
// The running lane list and palette cursor live on the Assigner, so separate
// Assigners never influence each other's colors.
type Assigner struct {
	lanes    []Lane
	cursor   paletteCursor
	maxLanes int
}

func NewAssigner(p Palette) *Assigner {
	return &Assigner{cursor: newPaletteCursor(p)}
}

// Assign lays out the whole commit slice.
func Assign(commits []Commit, p Palette) Layout {
	a := NewAssigner(p)
	rows := make([]Row, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, a.Next(c))
	}
	return Layout{Rows: rows, MaxLanes: a.MaxLanes()}
}

// MaxLanes is the widest row seen so far.
func (a *Assigner) MaxLanes() int {
	return a.maxLanes
}

// Next emits the row for c and advances the lane state.
func (a *Assigner) Next(c Commit) Row {
	input := a.lanes
	row := Row{
		Commit:     c,
		Input:      cloneLanes(input),
		NodeColumn: len(input),
	}

	first := laneIndex(input, c.Hash)
	hasParents := len(c.Parents) > 0
	var firstParent string
	if hasParents {
		firstParent = c.Parents[0]
	}
	// A pass-through lane already waiting for the first parent absorbs the
	// continuation instead of a second lane with the same id.
	converges := hasParents && laneIndex(input, firstParent) >= 0

	output := make([]Lane, 0, len(input)+len(c.Parents))
	for i, lane := range input {
		if lane.ID != c.Hash {
			output = append(output, lane)
			continue
		}
		if i != first || !hasParents || converges {
			continue
		}
		row.Continues = true
		row.ContinueColumn = len(output)
		output = append(output, Lane{ID: firstParent, Color: lane.Color})
	}

	if first >= 0 {
		row.Matched = true
		row.NodeColumn = first
		row.Color = input[first].Color
	} else {
		row.Color = a.cursor.take()
	}

	if hasParents && !row.Continues {
		idx := laneIndex(output, firstParent)
		if idx < 0 {
			idx = len(output)
			output = append(output, Lane{ID: firstParent, Color: row.Color})
		}
		row.Continues = true
		row.ContinueColumn = idx
	}

	for _, parent := range c.Parents[min(1, len(c.Parents)):] {
		if laneIndex(output, parent) >= 0 {
			continue
		}
		output = append(output, Lane{ID: parent, Color: a.cursor.take()})
	}

	row.Output = output
	a.lanes = cloneLanes(output)
	a.maxLanes = max(a.maxLanes, len(input), len(output), row.NodeColumn+1)
	return row
}

func laneIndex(lanes []Lane, id string) int {
	for i, l := range lanes {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneLanes(lanes []Lane) []Lane {
	out := make([]Lane, len(lanes))
	copy(out, lanes)
	return out
}
