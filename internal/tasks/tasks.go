package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// MessageInterval is how often the loading message rotates while a playlist is generated.
const MessageInterval = 2 * time.Second

// LoadingMessages are shown in turn while waiting on the generator.
var LoadingMessages = []string{
	"Consulting our AI DJ...",
	"Crafting your perfect vibe...",
	"Searching the cosmos for tunes...",
	"Mixing up a fresh playlist...",
	"Warming up the synthesizers...",
}

// PlaylistEngine runs generation and export jobs with progress reporting.
type PlaylistEngine struct {
	catalog  services.Catalog
	logger   *log.Logger
	interval time.Duration
}

// NewPlaylistEngine creates a new PlaylistEngine backed by catalog.
func NewPlaylistEngine(catalog services.Catalog, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &PlaylistEngine{catalog: catalog, logger: logger, interval: MessageInterval}
}

// Generate asks the catalog for a playlist matching prompt.
//
// A [Generating] update is sent immediately and then every interval until the catalog answers,
// followed by a single [Generated] update carrying the playlist.
func (e *PlaylistEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, prompt string) (*services.GeneratedPlaylist, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", shared.ErrInvalidInput)
	}

	sendProgress(progress, generatingUpdate(0))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for step := 1; ; step++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				sendProgress(progress, generatingUpdate(step))
			}
		}
	}()

	started := time.Now()
	pl, err := e.catalog.GeneratePlaylist(ctx, prompt)
	close(done)
	wg.Wait()

	if err != nil {
		e.logger.Error("playlist generation failed", "prompt", prompt, "error", err)
		return nil, err
	}

	e.logger.Info("playlist generated", "name", pl.Name, "tracks", len(pl.Tracks), "took", time.Since(started))
	sendProgress(progress, generatedUpdate(pl.Name, len(pl.Tracks), pl))
	return pl, nil
}
