package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thiagokokada/gitgraph-go/internal/git"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

const (
	svgLineWidth   = 2
	svgFontFamily  = "ui-monospace, SFMono-Regular, Menlo, monospace"
	svgFontSize    = 12
	svgLabelGap    = 6
	svgLabelPadX   = 4
	svgLabelHeight = 16
	// svgTextWidth is the horizontal space reserved for labels and subjects.
	svgTextWidth = 640
)

// SVG writes the whole layout as a single standalone SVG document.
func SVG(w io.Writer, layout graph.Layout, opts Options) error {
	doc := NewDocument(layout, opts)
	width := doc.Width + svgTextWidth
	dark := opts.Theme.IsDark()

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(width), num(doc.Height), num(width), num(doc.Height))
	svg.WriteByte('\n')
	if opts.Theme.Background != "" {
		fmt.Fprintf(&svg, `<rect width="100%%" height="100%%" fill="%s"/>`, escapeXML(opts.Theme.Background))
		svg.WriteByte('\n')
	}
	for i, g := range doc.Geometry {
		row := layout.Rows[i]
		fmt.Fprintf(&svg, `<g class="row" data-hash="%s" transform="translate(0 %s)">`, escapeXML(row.Commit.Hash), num(g.Top))
		svg.WriteByte('\n')
		for _, p := range g.Paths {
			fmt.Fprintf(&svg, `<path class="%s" d="%s" stroke="%s" stroke-width="%d" fill="none"/>`,
				p.Kind, p.D, escapeXML(string(p.Color)), svgLineWidth)
			svg.WriteByte('\n')
		}
		labels := refLabels(row.Commit.Refs)
		fill := opts.Theme.Background
		if fill == "" {
			fill = "white"
		}
		if hasHead(labels) {
			fill = labelStyleFor(dark, git.RefLabel{Kind: git.RefKindHead}, row.Color).fill
		}
		fmt.Fprintf(&svg, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%d"/>`,
			num(g.Node.X), num(g.Node.Y), num(g.Node.R), escapeXML(fill), escapeXML(string(g.Node.Color)), svgLineWidth)
		svg.WriteByte('\n')
		writeSVGText(&svg, row, labels, doc.Width, g.Node.Y, dark, opts)
		svg.WriteString("</g>\n")
	}
	svg.WriteString("</svg>\n")

	_, err := io.WriteString(w, svg.String())
	if err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeSVGText(svg *strings.Builder, row graph.Row, labels []git.RefLabel, x, y float64, dark bool, opts Options) {
	for _, label := range labels {
		text := displayRef(label)
		style := labelStyleFor(dark, label, row.Color)
		w := estimateTextWidth(text) + 2*svgLabelPadX
		fmt.Fprintf(svg, `<rect class="ref ref-%s" x="%s" y="%s" width="%s" height="%d" rx="3" fill="%s" stroke="%s"/>`,
			label.Kind, num(x), num(y-svgLabelHeight/2), num(w), svgLabelHeight,
			escapeXML(style.fill), escapeXML(style.out))
		fmt.Fprintf(svg, `<text x="%s" y="%s" dominant-baseline="central" font-family="%s" font-size="%d" fill="%s">%s</text>`,
			num(x+svgLabelPadX), num(y), svgFontFamily, svgFontSize, escapeXML(style.text), escapeXML(text))
		svg.WriteByte('\n')
		x += w + svgLabelGap
	}
	fg := opts.Theme.Foreground
	if fg == "" {
		fg = "black"
	}
	muted := opts.Theme.Muted
	if muted == "" {
		muted = fg
	}
	fmt.Fprintf(svg, `<text x="%s" y="%s" dominant-baseline="central" font-family="%s" font-size="%d" fill="%s"><tspan fill="%s">%s</tspan> %s`,
		num(x), num(y), svgFontFamily, svgFontSize, escapeXML(fg),
		escapeXML(muted), escapeXML(git.ShortHash(row.Commit.Hash)), escapeXML(row.Commit.Message))
	if by := byline(row.Commit); by != "" {
		fmt.Fprintf(svg, ` <tspan class="byline" fill="%s">- %s</tspan>`, escapeXML(muted), escapeXML(by))
	}
	svg.WriteString("</text>\n")
}

// estimateTextWidth approximates a monospace run at svgFontSize.
func estimateTextWidth(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * svgFontSize * 0.6
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeXML also replaces characters XML cannot carry, such as control
// characters and invalid UTF-8.
func escapeXML(s string) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
