package render

import (
	"strings"

	"github.com/thiagokokada/gitgraph-go/internal/git"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

type labelStyle struct {
	fill string
	out  string
	text string
}

func labelStyleFor(dark bool, ref git.RefLabel, nodeColor graph.Color) labelStyle {
	switch ref.Kind {
	case git.RefKindHead:
		if dark {
			return labelStyle{fill: "#b58900", out: "#8a6a00", text: "#111111"}
		}
		return labelStyle{fill: "#ffd75e", out: "#c9a300", text: "#111111"}
	case git.RefKindTag:
		if dark {
			return labelStyle{fill: "#3a3a3a", out: "#6b6b6b", text: "#eaeaea"}
		}
		return labelStyle{fill: "#e6e6e6", out: "#8a8a8a", text: "#111111"}
	case git.RefKindRemoteBranch:
		if dark {
			return labelStyle{fill: "#253446", out: "#4fa3ff", text: "#eaeaea"}
		}
		return labelStyle{fill: "#dbeafe", out: "#2563eb", text: "#111111"}
	}
	text := "#111111"
	fill := "#dff5de"
	if dark {
		text = "#eaeaea"
		fill = "#1f3b2a"
	}
	return labelStyle{fill: fill, out: string(nodeColor), text: text}
}

// refLabels parses the non-empty decorations of a commit.
func refLabels(refs []string) []git.RefLabel {
	out := make([]git.RefLabel, 0, len(refs))
	for _, r := range refs {
		if strings.TrimSpace(r) == "" {
			continue
		}
		out = append(out, git.ParseRef(r))
	}
	return out
}

// displayRef formats a label the way `git log --decorate` prints it.
func displayRef(ref git.RefLabel) string {
	switch ref.Kind {
	case git.RefKindHead:
		if ref.Name == "HEAD" {
			return "HEAD"
		}
		return "HEAD -> " + ref.Name
	case git.RefKindTag:
		return "tag: " + ref.Name
	default:
		return ref.Name
	}
}

func hasHead(labels []git.RefLabel) bool {
	for _, l := range labels {
		if l.Kind == git.RefKindHead {
			return true
		}
	}
	return false
}
