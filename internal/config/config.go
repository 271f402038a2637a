package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitgraph-go/internal/graph"
)

// File is the on-disk configuration. Zero values mean "not set" so flags and
// defaults can fill them in.
type File struct {
	Limit     int      `yaml:"limit" toml:"limit"`
	All       *bool    `yaml:"all" toml:"all"`
	Backend   string   `yaml:"backend" toml:"backend"`
	Mode      string   `yaml:"mode" toml:"mode"`
	Format    string   `yaml:"format" toml:"format"`
	Addr      string   `yaml:"addr" toml:"addr"`
	Watch     *bool    `yaml:"watch" toml:"watch"`
	RowHeight float64  `yaml:"row_height" toml:"row_height"`
	LaneWidth float64  `yaml:"lane_width" toml:"lane_width"`
	Palette   []string `yaml:"palette" toml:"palette"`
}

// DefaultPaths lists the locations searched when no -config flag is given,
// relative to the repository root.
var DefaultPaths = []string{".gitgraph.yaml", ".gitgraph.yml", ".gitgraph.toml"}

// Load reads a YAML or TOML file, chosen by extension.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Find loads the first default config file in dir or the closest parent
// holding one, stopping at the repository root (the directory containing
// .git). It returns a zero File and ok=false when none exists.
func Find(dir string) (f File, path string, ok bool, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return File{}, "", false, fmt.Errorf("resolve config directory: %w", err)
	}
	for {
		if f, path, ok, err = findIn(dir); err != nil || ok {
			return f, path, ok, err
		}
		if _, statErr := os.Stat(filepath.Join(dir, ".git")); statErr == nil {
			return File{}, "", false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return File{}, "", false, nil
		}
		dir = parent
	}
}

func findIn(dir string) (File, string, bool, error) {
	for _, name := range DefaultPaths {
		candidate := filepath.Join(dir, name)
		if _, statErr := os.Stat(candidate); statErr != nil {
			if errors.Is(statErr, os.ErrNotExist) {
				continue
			}
			return File{}, "", false, fmt.Errorf("stat config: %w", statErr)
		}
		f, err := Load(candidate)
		if err != nil {
			return File{}, "", false, err
		}
		return f, candidate, true, nil
	}
	return File{}, "", false, nil
}

func (f File) Validate() error {
	var errs []error
	if f.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative, got %d", f.Limit))
	}
	if f.RowHeight < 0 {
		errs = append(errs, fmt.Errorf("row_height must not be negative, got %v", f.RowHeight))
	}
	if f.LaneWidth < 0 {
		errs = append(errs, fmt.Errorf("lane_width must not be negative, got %v", f.LaneWidth))
	}
	switch f.Format {
	case "", "text", "json", "svg":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", f.Format))
	}
	return errors.Join(errs...)
}

// Dimensions applies the configured sizes over d.
func (f File) Dimensions(d graph.Dimensions) graph.Dimensions {
	if f.RowHeight > 0 {
		d.RowHeight = f.RowHeight
	}
	if f.LaneWidth > 0 {
		d.LaneWidth = f.LaneWidth
	}
	return d
}

func (f File) LanePalette() graph.Palette {
	return graph.ParsePalette(f.Palette)
}
