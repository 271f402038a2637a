package render

import (
	"time"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

const bylineDateLayout = "2006-01-02 15:04"

// byline is the "author, date" suffix shown after a subject.
func byline(c graph.Commit) string {
	date := shortDate(c.Date)
	switch {
	case c.Author != "" && date != "":
		return c.Author + ", " + date
	case c.Author != "":
		return c.Author
	default:
		return date
	}
}

func shortDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format(bylineDateLayout)
}
