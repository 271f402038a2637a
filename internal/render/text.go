package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/thiagokokada/gitgraph-go/internal/git"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

// Text writes a `git log --graph --oneline` style listing, one line per row.
// Lane glyphs take the lane color and decorations are styled by ref kind when
// opts.Color is set.
func Text(w io.Writer, layout graph.Layout, opts Options) error {
	r := lipgloss.NewRenderer(w)
	if opts.Color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	dark := opts.Theme.IsDark()
	muted := r.NewStyle()
	if opts.Theme.Muted != "" {
		muted = muted.Foreground(lipgloss.Color(opts.Theme.Muted))
	}

	bw := bufio.NewWriter(w)
	for _, row := range layout.Rows {
		var line strings.Builder
		line.WriteString(graphGlyphs(r, row))
		line.WriteByte(' ')
		line.WriteString(muted.Render(git.ShortHash(row.Commit.Hash)))
		if labels := refLabels(row.Commit.Refs); len(labels) > 0 {
			parts := make([]string, 0, len(labels))
			for _, label := range labels {
				style := labelStyleFor(dark, label, row.Color)
				s := r.NewStyle().Foreground(lipgloss.Color(style.out))
				if label.Kind == git.RefKindHead {
					s = s.Bold(true)
				}
				parts = append(parts, s.Render(displayRef(label)))
			}
			line.WriteString(" (" + strings.Join(parts, ", ") + ")")
		}
		if row.Commit.Message != "" {
			line.WriteString(" " + row.Commit.Message)
		}
		if by := byline(row.Commit); by != "" {
			line.WriteString(" " + muted.Render("- "+by))
		}
		if _, err := fmt.Fprintln(bw, line.String()); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

func graphGlyphs(r *lipgloss.Renderer, row graph.Row) string {
	tokens := row.Tokens()
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		var color graph.Color
		switch {
		case i == row.NodeColumn:
			color = row.Color
		case i < len(row.Input):
			color = row.Input[i].Color
		}
		if color == "" || tok == " " {
			out[i] = tok
			continue
		}
		out[i] = r.NewStyle().Foreground(lipgloss.Color(string(color))).Render(tok)
	}
	return strings.Join(out, " ")
}
