package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

// JSON writes the layout document, highlighted for a terminal when opts.Color
// is set.
func JSON(w io.Writer, layout graph.Layout, opts Options) error {
	data, err := json.MarshalIndent(NewDocument(layout, opts), "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	data = append(data, '\n')
	if !opts.Color {
		_, err = w.Write(data)
		return err
	}
	return highlightJSON(w, string(data), opts.Theme.ChromaStyle)
}

func highlightJSON(w io.Writer, content, styleName string) error {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("tokenise json: %w", err)
	}
	if err := formatter.Format(w, style, iterator); err != nil {
		return fmt.Errorf("highlight json: %w", err)
	}
	return nil
}
