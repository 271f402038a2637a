package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or svg)", raw)
	}
}

// Write renders layout in format f.
func Write(w io.Writer, f Format, layout graph.Layout, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, layout, opts)
	case FormatSVG:
		return SVG(w, layout, opts)
	case FormatText, "":
		return Text(w, layout, opts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
