package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/notify"
	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/desertthunder/nextmusic/internal/tasks"
	"github.com/desertthunder/nextmusic/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/nextmusic-tui.log"

// Play launches the interactive player, optionally starting on a playlist or search.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	if err := r.requireLibrary(); err != nil {
		return err
	}

	repeat, err := models.ParseRepeatMode(cmd.String("repeat"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	initial, err := r.initialTracks(ctx, cmd.String("playlist"), cmd.String("query"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	restore, err := r.redirectLogs(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer restore()

	cfg := r.config
	coordinator := player.NewCoordinator(r.bootstrap,
		player.WithLogger(shared.WithLogger(r.logger, "component", "player")),
		player.WithPollInterval(cfg.Player.PollInterval()),
		player.WithVolume(cfg.Player.Volume),
		player.WithOnTrackStart(r.history.Record),
	)
	defer coordinator.Close()
	coordinator.Start(ctx)

	coordinator.SetShuffleMode(cmd.Bool("shuffle"))
	coordinator.SetRepeatMode(repeat)
	if len(initial) > 0 {
		coordinator.LoadAndPlay(initial, 0)
	}

	bus := notify.NewBus(notify.WithHideAfter(cfg.Notifications.HideAfter()))
	defer bus.Close()

	search := tasks.NewSearchSession(r.catalog, cfg.Search.Debounce(), r.logger)
	defer search.Close()

	model := ui.NewModel(ctx, ui.Deps{
		Player:  coordinator,
		Library: r.library,
		History: r.history,
		Catalog: r.catalog,
		Notify:  bus,
		Search:  search,
		Engine:  r.engine,
		Region:  cfg.Credentials.YouTube.Region,
		Logger:  r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// initialTracks resolves the --playlist or --query flag to the tracks to start with.
func (r *Runner) initialTracks(ctx context.Context, playlist, query string) ([]models.Track, error) {
	playlist = strings.TrimSpace(playlist)
	query = strings.TrimSpace(query)

	switch {
	case playlist != "" && query != "":
		return nil, fmt.Errorf("%w: cannot specify both --playlist and --query", shared.ErrInvalidArgument)
	case playlist != "":
		pl, err := r.library.Get(playlist)
		if err != nil {
			return nil, err
		}
		if pl.Len() == 0 {
			r.logger.Warn("playlist is empty", "name", pl.Name)
		}
		return pl.Tracks, nil
	case query != "":
		return r.catalog.Search(ctx, query)
	default:
		return nil, nil
	}
}
