package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/thiagokokada/gitgraph-go/internal/app"
	"github.com/thiagokokada/gitgraph-go/internal/buildinfo"
	"github.com/thiagokokada/gitgraph-go/internal/config"
	"github.com/thiagokokada/gitgraph-go/internal/git"
	gitbackend "github.com/thiagokokada/gitgraph-go/internal/git/backend"
	"github.com/thiagokokada/gitgraph-go/internal/graph"
	"github.com/thiagokokada/gitgraph-go/internal/render"
	"github.com/thiagokokada/gitgraph-go/internal/theme"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gitgraph-go", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML or TOML config file (default: .gitgraph.yaml in the repository)")
	limit := fs.Int("limit", git.DefaultLimit, "maximum number of commits to load, 0 for no limit")
	all := fs.Bool("all", false, "show history of every ref instead of HEAD only")
	backend := fs.String("backend", string(gitbackend.KindNative), "git backend: native or cli")
	mode := fs.String("mode", theme.Auto.String(), "color mode: auto, light, or dark")
	format := fs.String("format", string(render.FormatText), "output format: text, json, or svg")
	output := fs.String("o", "", "write output to file instead of stdout")
	serve := fs.String("serve", "", "serve the graph over HTTP on this address, e.g. 127.0.0.1:8080")
	noWatch := fs.Bool("nowatch", false, "disable automatic refresh when repository changes")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(buildinfo.Read())
		return nil
	}
	app.SetupLogging(*verbose)

	repoPath := "."
	remaining := fs.Args()
	if len(remaining) > 0 {
		repoPath = remaining[len(remaining)-1]
	}

	cfg := app.RunConfig{
		RepoPath:   repoPath,
		Backend:    gitbackend.Kind(*backend),
		Log:        git.LogOptions{Limit: *limit, All: *all},
		Theme:      theme.PreferenceFromString(*mode),
		Dimensions: graph.DefaultDimensions,
		Output:     *output,
		ServeAddr:  *serve,
		Watch:      !*noWatch,
		Verbose:    *verbose,
	}
	rawFormat := *format

	file, err := loadConfigFile(*configPath, repoPath)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyConfigFile(&cfg, &rawFormat, file, set)

	cfg.Format, err = render.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	cfg.Color = cfg.Output == "" && term.IsTerminal(int(os.Stdout.Fd()))
	return app.Run(ctx, cfg)
}

func loadConfigFile(path, repoPath string) (config.File, error) {
	if path != "" {
		return config.Load(path)
	}
	file, found, ok, err := config.Find(repoPath)
	if err != nil {
		return config.File{}, err
	}
	if ok {
		slog.Debug("using config file", slog.String("path", found))
	}
	return file, nil
}

// applyConfigFile fills cfg from the config file for every flag that was not
// given on the command line.
func applyConfigFile(cfg *app.RunConfig, format *string, file config.File, set map[string]bool) {
	if !set["limit"] && file.Limit > 0 {
		cfg.Log.Limit = file.Limit
	}
	if !set["all"] && file.All != nil {
		cfg.Log.All = *file.All
	}
	if !set["backend"] && file.Backend != "" {
		cfg.Backend = gitbackend.Kind(file.Backend)
	}
	if !set["mode"] && file.Mode != "" {
		cfg.Theme = theme.PreferenceFromString(file.Mode)
	}
	if !set["format"] && file.Format != "" {
		*format = file.Format
	}
	if !set["serve"] && file.Addr != "" {
		cfg.ServeAddr = file.Addr
	}
	if !set["nowatch"] && file.Watch != nil {
		cfg.Watch = *file.Watch
	}
	cfg.Dimensions = file.Dimensions(cfg.Dimensions)
	cfg.Palette = file.LanePalette()
}
