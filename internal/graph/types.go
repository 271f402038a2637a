package graph

// Commit is a single history record as supplied by the commit feed.
//
// Records are ordered newest-first and any parent present in the same slice
// appears after its children. Parents outside the slice mark a history boundary.
type Commit struct {
	Hash    string   `json:"hash"`
	Parents []string `json:"parents"`
	Author  string   `json:"author"`
	Email   string   `json:"email"`
	Date    string   `json:"date"`
	Refs    []string `json:"refs"`
	Message string   `json:"message"`
	Body    string   `json:"body,omitempty"`
}

// Lane is one unresolved ancestor line waiting for the commit with hash ID.
type Lane struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// Row is the lane state around one commit.
type Row struct {
	Commit Commit `json:"commit"`
	Color  Color  `json:"color"`
	Input  []Lane `json:"input"`
	Output []Lane `json:"output"`

	// NodeColumn is the index of the first matching input lane, or len(Input)
	// for a new tip.
	NodeColumn int  `json:"nodeColumn"`
	Matched    bool `json:"matched"`
	// Continues reports whether the first parent is carried by an output lane;
	// ContinueColumn is that lane's index.
	Continues      bool `json:"continues"`
	ContinueColumn int  `json:"continueColumn"`
}

// Layout is the result of assigning lanes to a commit slice.
type Layout struct {
	Rows     []Row `json:"rows"`
	MaxLanes int   `json:"maxLanes"`
}
