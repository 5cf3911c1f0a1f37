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

type playlistSummary struct {
	Name   string `json:"name"`
	Tracks int    `json:"tracks"`
}

// PlaylistsList prints every playlist in the library.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	playlists := r.library.Playlists()
	if cmd.Bool("json") {
		out := make([]playlistSummary, len(playlists))
		for i, p := range playlists {
			out[i] = playlistSummary{Name: p.Name, Tracks: p.Len()}
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Your Library")
	for _, p := range playlists {
		if err := r.writePlain("  %-40s %d tracks\n", p.Name, p.Len()); err != nil {
			return err
		}
	}
	return nil
}

// PlaylistsShow prints the tracks of one playlist.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.playlistArg(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(pl, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", pl.Name, pl.Len()))
	return r.writeTracks(pl.Tracks)
}

// PlaylistsCreate adds an empty playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}
	if err := r.library.Create(name); err != nil {
		return err
	}
	return r.writePlain("✓ Created playlist %q\n", name)
}

// PlaylistsDelete removes a playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.playlistArg(cmd)
	if err != nil {
		return err
	}
	if err := r.library.Delete(pl.Name); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %q\n", pl.Name)
}

// PlaylistsAdd adds a track to a playlist, either the first result for --query or the track
// described by --video-id.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.playlistArg(cmd)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.String("query"))
	videoID := strings.TrimSpace(cmd.String("video-id"))

	var track models.Track
	switch {
	case query != "" && videoID != "":
		return fmt.Errorf("%w: cannot specify both --query and --video-id", shared.ErrInvalidArgument)
	case query != "":
		if err := r.requireCatalog(); err != nil {
			return err
		}
		results, err := r.catalog.Search(ctx, query)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
		}
		track = results[0]
	case videoID != "":
		title := cmd.String("title")
		if title == "" {
			title = videoID
		}
		if track, err = models.NewTrack(videoID, videoID, title, cmd.String("artist"), ""); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: either --query or --video-id must be provided", shared.ErrMissingArgument)
	}

	added, err := r.library.AddTrack(pl.Name, track)
	if err != nil {
		return err
	}
	if !added {
		return r.writePlain("%s is already in %q\n", track.String(), pl.Name)
	}
	return r.writePlain("✓ Added %s to %q\n", track.String(), pl.Name)
}

// PlaylistsRemove removes a track by id.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	pl, err := r.playlistArg(cmd)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if err := r.library.RemoveTrack(pl.Name, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from %q\n", id, pl.Name)
}

// PlaylistsExport writes the named playlists, or the whole library, to files.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	var playlists []models.Playlist
	if names := cmd.Args().Slice(); len(names) > 0 {
		for _, name := range names {
			pl, err := r.library.Get(name)
			if err != nil {
				return err
			}
			playlists = append(playlists, pl)
		}
	} else {
		playlists = r.library.Playlists()
	}

	progress := make(chan tasks.ProgressUpdate, len(playlists)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.ExportPlaylist:
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			case tasks.WriteManifest:
				r.logger.Info(update.Message)
			}
		}
	}()

	result, err := r.engine.Export(ctx, progress, playlists, tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Export complete")
	r.writePlain("Format:     %s\n", result.Format)
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Exported:   %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ %s (%d tracks)\n", res.Name, res.Tracks)
		} else {
			r.writePlain("  ✗ %s: %s\n", res.Name, res.Error)
		}
	}
	if result.ManifestPath != "" {
		r.writePlainln("Manifest: %s", result.ManifestPath)
	}
	return nil
}

// History prints or clears the recently played list.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLibrary(); err != nil {
		return err
	}

	if cmd.Bool("clear") {
		r.history.Clear()
		return r.writePlain("✓ History cleared\n")
	}

	tracks := r.history.Tracks()
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Recently Played")
	return r.writeTracks(tracks)
}

func (r *Runner) playlistArg(cmd *cli.Command) (models.Playlist, error) {
	if err := r.requireLibrary(); err != nil {
		return models.Playlist{}, err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}
	return r.library.Get(name)
}
