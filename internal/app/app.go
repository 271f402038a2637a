package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thiagokokada/gitgraph-go/internal/git"
	gitbackend "github.com/thiagokokada/gitgraph-go/internal/git/backend"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
	"github.com/thiagokokada/gitgraph-go/internal/render"
	"github.com/thiagokokada/gitgraph-go/internal/server"
	"github.com/thiagokokada/gitgraph-go/internal/theme"
)

type RunConfig struct {
	RepoPath   string
	Backend    gitbackend.Kind
	Log        git.LogOptions
	Theme      theme.Preference
	Palette    graph.Palette
	Dimensions graph.Dimensions
	Format     render.Format
	// Output is the destination file; empty means Stdout.
	Output string
	Stdout io.Writer
	// Color enables ANSI colors for terminal formats.
	Color bool
	// ServeAddr switches from one-shot rendering to the HTTP server.
	ServeAddr string
	Watch     bool
	Verbose   bool
}

func SetupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func Run(ctx context.Context, cfg RunConfig) error {
	svc, err := git.Open(cfg.RepoPath, cfg.Backend)
	if err != nil {
		return err
	}
	th := theme.ForPreference(cfg.Theme).WithLanes(cfg.Palette)
	slog.Debug("repository opened",
		slog.String("path", svc.RepoPath()),
		slog.String("backend", string(cfg.Backend)),
		slog.String("theme", th.Name),
	)

	if cfg.ServeAddr != "" {
		srv := server.New(svc, server.Config{
			Addr:       cfg.ServeAddr,
			Log:        cfg.Log,
			Theme:      th,
			Dimensions: cfg.Dimensions,
			Watch:      cfg.Watch,
		})
		return srv.Run(ctx)
	}

	commits, err := svc.Commits(ctx, cfg.Log)
	if err != nil {
		return err
	}
	layout := graph.Assign(commits, th.Lanes)
	opts := render.Options{Theme: th, Dimensions: cfg.Dimensions, Color: cfg.Color}
	return writeOutput(cfg, func(w io.Writer) error {
		return render.Write(w, cfg.Format, layout, opts)
	})
}

func writeOutput(cfg RunConfig, fn func(io.Writer) error) (err error) {
	if cfg.Output == "" {
		w := cfg.Stdout
		if w == nil {
			w = os.Stdout
		}
		return fn(w)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()
	return fn(f)
}
