package theme

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

type Preference int

const (
	Auto Preference = iota
	Light
	Dark
)

func (p Preference) String() string {
	switch p {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "auto"
	}
}

func PreferenceFromString(raw string) Preference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case Dark.String():
		return Dark
	case Light.String():
		return Light
	default:
		return Auto
	}
}

// Theme holds the colors used by the renderers.
type Theme struct {
	Name       string
	Lanes      graph.Palette
	Background string
	Foreground string
	Muted      string
	// ChromaStyle names the chroma style used for highlighted output.
	ChromaStyle string
}

var (
	LightTheme = Theme{
		Name:        "light",
		Lanes:       graph.Palette{"#00cc00", "#cc0000", "#0055cc", "#aa00aa", "#555555", "#8b4513", "#ff8c00"},
		Background:  "#ffffff",
		Foreground:  "#111111",
		Muted:       "#8a8a8a",
		ChromaStyle: "github",
	}
	DarkTheme = Theme{
		Name:        "dark",
		Lanes:       graph.Palette{"#00ff00", "#ff5c5c", "#4fa3ff", "#d56bff", "#a0a0a0", "#d09a6b", "#ffb347"},
		Background:  "#1e1e1e",
		Foreground:  "#eaeaea",
		Muted:       "#6b6b6b",
		ChromaStyle: "github-dark",
	}
	// ClassicTheme keeps the six-color lane palette on a dark canvas; it is
	// used when the desktop mode cannot be detected.
	ClassicTheme = Theme{
		Name:        "classic",
		Lanes:       graph.DefaultPalette,
		Background:  "#1e1e1e",
		Foreground:  "#eaeaea",
		Muted:       "#6b6b6b",
		ChromaStyle: "monokai",
	}

	detectDarkMode = darkmode.IsDarkMode
)

// ForPreference resolves a preference to a theme, asking the desktop for Auto.
func ForPreference(pref Preference) Theme {
	switch pref {
	case Dark:
		return DarkTheme
	case Light:
		return LightTheme
	default:
		if detectDarkMode == nil {
			return ClassicTheme
		}
		dark, err := detectDarkMode()
		if err != nil {
			slog.Debug("detect dark-mode", slog.Any("error", err))
			return ClassicTheme
		}
		if dark {
			return DarkTheme
		}
		return LightTheme
	}
}

// WithLanes returns a copy using lanes instead of the theme palette. An empty
// override leaves the theme unchanged.
func (t Theme) WithLanes(lanes graph.Palette) Theme {
	if len(lanes) > 0 {
		t.Lanes = lanes
	}
	return t
}

func (t Theme) IsDark() bool {
	return t.Name != LightTheme.Name
}
