package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/desertthunder/nextmusic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search prints the catalog results for a query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	r.logger.Debug("searching catalog", "query", query)
	tracks, err := r.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	return r.writeTracks(tracks)
}

// Trending prints the most popular music for a region.
func (r *Runner) Trending(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	region := cmd.String("region")
	if region == "" {
		region = r.config.Credentials.YouTube.Region
	}

	tracks, err := r.catalog.Trending(ctx, region)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Trending in %s", strings.ToUpper(region)))
	return r.writeTracks(tracks)
}

// Generate asks the generator for a playlist and optionally saves it to the library.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	prompt := strings.TrimSpace(cmd.StringArg("prompt"))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	save := cmd.Bool("save")
	if save {
		if err := r.requireLibrary(); err != nil {
			return err
		}
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.Generating {
				r.logger.Info(update.Message)
			}
		}
	}()

	pl, err := r.engine.Generate(ctx, progress, prompt)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	saved := ""
	if save {
		name := cmd.String("name")
		if name == "" {
			name = pl.Name
		}
		if saved, err = r.library.SaveGenerated(name, pl.Tracks); err != nil {
			return err
		}
		r.logger.Info("playlist saved", "name", saved)
	}

	if cmd.Bool("json") {
		return r.writeJSON(generatedOutput{Name: pl.Name, SavedAs: saved, Tracks: pl.Tracks}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(pl.Name)
	if err := r.writeTracks(pl.Tracks); err != nil {
		return err
	}
	if saved != "" {
		r.writePlainln("✓ Saved to library as %q", saved)
	}
	return nil
}

type generatedOutput struct {
	Name    string         `json:"name"`
	SavedAs string         `json:"saved_as,omitempty"`
	Tracks  []models.Track `json:"tracks"`
}

func (r *Runner) writeTracks(tracks []models.Track) error {
	if len(tracks) == 0 {
		return r.writePlain("No tracks found\n")
	}
	for i, t := range tracks {
		if err := r.writePlain("%3d. %s\n     %s\n", i+1, t.String(), shared.WatchURL(t.VideoID)); err != nil {
			return err
		}
	}
	return nil
}

