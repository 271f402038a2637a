package graph

// Color is a CSS color string such as "#00b0ff".
type Color string

// Palette is a fixed, ordered list of lane colors.
type Palette []Color

// DefaultPalette is used when no other palette is configured.
var DefaultPalette = Palette{
	"#00b0ff", // blue
	"#aa00ff", // purple
	"#ff0000", // red
	"#00ff00", // green
	"#ffaa00", // orange
	"#00aaaa", // cyan
}

// ParsePalette converts raw color strings, skipping empty entries.
func ParsePalette(raw []string) Palette {
	var p Palette
	for _, c := range raw {
		if c == "" {
			continue
		}
		p = append(p, Color(c))
	}
	return p
}

// paletteCursor hands out palette colors in order, wrapping around.
type paletteCursor struct {
	palette Palette
	next    int
}

func newPaletteCursor(p Palette) paletteCursor {
	if len(p) == 0 {
		p = DefaultPalette
	}
	return paletteCursor{palette: p}
}

func (c *paletteCursor) take() Color {
	color := c.palette[c.next%len(c.palette)]
	c.next++
	return color
}
