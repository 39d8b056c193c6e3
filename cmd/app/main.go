package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/royfox/little-reviews/internal"
	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/authoring"
	"github.com/royfox/little-reviews/internal/catalog"
	"github.com/royfox/little-reviews/internal/query"
	"github.com/royfox/little-reviews/internal/record"
	"github.com/royfox/little-reviews/internal/reviewservice"
	"github.com/royfox/little-reviews/internal/storage"
	"github.com/royfox/little-reviews/internal/ui"
	pkgconfig "github.com/royfox/little-reviews/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	rep, err := internal.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Println(ui.BuildSummary(cfg.Content.ArtifactPath(), rep))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithWatch(cmd.Bool("watch")),
		internal.WithVersion(version),
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src := internal.ArtifactSource(cfg)
	if a := cmd.String("artifact"); a != "" {
		if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			src = catalog.HTTPSource{URL: a}
		} else {
			src = catalog.FileSource{Path: a}
		}
	}

	session := internal.LoadSession(ctx, src)
	records, err := session.Records()
	if err != nil {
		return fmt.Errorf("query: %w: %v", err, session.Err)
	}

	st := query.ParseState(url.Values{
		"type": {cmd.String("type")},
		"q":    {cmd.String("search")},
		"sort": {cmd.String("sort")},
		"dir":  {cmd.String("dir")},
	})
	fmt.Println(ui.ReviewTable(query.Apply(records, st)))
	return nil
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sessions := reviewservice.NewSessions(nil)
	editID := cmd.String("edit")
	if editID != "" {
		sessions.Set(internal.LoadSession(ctx, internal.ArtifactSource(cfg)))
	}
	svc := reviewservice.NewService(sessions)

	out, err := svc.Draft(ctx, reviewservice.DraftRequest{
		ID: editID,
		Draft: authoring.Draft{
			Title:       cmd.String("title"),
			Type:        cmd.String("type"),
			Author:      cmd.String("author"),
			Rating:      cmd.Float("rating"),
			Text:        cmd.String("text"),
			ReleaseYear: int(cmd.Int("year")),
		},
	})
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}

	path := filepath.Join(cmd.String("out"), out.FileName)
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("new: %s: %w (use --force to overwrite)", path, apperr.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("new: %w", err)
	}
	if err := storage.WriteFileAtomic(path, out.Content); err != nil {
		return fmt.Errorf("new: %w", err)
	}
	fmt.Println(path)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "littlereviews",
		Usage:   "Personal media-review catalogue built from YAML records",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Aggregate the record store into the artifact",
				Action: runBuild,
			},
			{
				Name:   "serve",
				Usage:  "Serve the catalogue API and the built site",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Rebuild when record files change"},
				},
			},
			{
				Name:   "query",
				Usage:  "Filter, search and sort the catalogue",
				Action: runQuery,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: query.FilterAll, Usage: "all, Movie, TV Show, Book or Music"},
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Case-insensitive term matched against title and author"},
					&cli.StringFlag{Name: "sort", Value: string(query.SortReviewDate), Usage: "reviewDate, releaseYear or rating"},
					&cli.StringFlag{Name: "dir", Value: string(query.Desc), Usage: "desc or asc"},
					&cli.StringFlag{Name: "artifact", Usage: "Artifact path or URL (defaults to the configured artifact)"},
				},
			},
			{
				Name:   "new",
				Usage:  "Write a new or edited record file",
				Action: runNew,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "type", Required: true, Usage: "Movie, TV Show, Book or Music"},
					&cli.StringFlag{Name: "author", Usage: "Author or artist; required for Book and Music"},
					&cli.FloatFlag{Name: "rating", Required: true, Usage: fmt.Sprintf("%g to %g in half steps", record.MinRating, record.MaxRating)},
					&cli.IntFlag{Name: "year", Required: true, Usage: "Release year"},
					&cli.StringFlag{Name: "text", Required: true, Usage: "Review text"},
					&cli.StringFlag{Name: "edit", Usage: "Id of the record being edited"},
					&cli.StringFlag{Name: "out", Value: ".", Usage: "Directory the record file is written to"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Expose the catalogue to MCP clients on stdio",
				Action: runMCP,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
