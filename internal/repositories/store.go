package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

const (
	PlaylistsKey = "next-music-playlists"
	HistoryKey   = "next-music-history"
)

const storeTimeout = 5 * time.Second

// Store persists playlists and history as JSON blobs.
type Store struct {
	blobs  *BlobRepository
	logger *log.Logger
}

// NewStore creates a Store over blobs. A nil logger discards output.
func NewStore(blobs *BlobRepository, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &Store{blobs: blobs, logger: logger}
}

// LoadPlaylists returns the normalised stored playlists, or nil when nothing usable is stored.
func (s *Store) LoadPlaylists() []models.Playlist {
	var stored []models.Playlist
	if !s.load(PlaylistsKey, &stored) {
		return nil
	}
	return normalizePlaylists(stored)
}

// SaveAll replaces the stored playlists.
func (s *Store) SaveAll(playlists []models.Playlist) error {
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return s.save(PlaylistsKey, playlists)
}

// LoadHistory returns the normalised recently played list, or nil when nothing usable is stored.
func (s *Store) LoadHistory() []models.Track {
	var stored []models.Track
	if !s.load(HistoryKey, &stored) {
		return nil
	}
	return models.NormalizeHistory(stored)
}

// SaveHistory replaces the stored history.
func (s *Store) SaveHistory(history []models.Track) error {
	if history == nil {
		history = []models.Track{}
	}
	return s.save(HistoryKey, history)
}

// load decodes key into v and reports whether a usable value was found.
func (s *Store) load(key string, v any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("failed to read stored value", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding stored value", "key", key, "error", fmt.Errorf("%w: %v", shared.ErrStorageCorrupt, err))
		return false
	}
	return true
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	return s.blobs.Put(ctx, key, data)
}

// normalizePlaylists drops unnamed playlists and invalid tracks and collapses duplicate names and
// duplicate track ids, keeping the first occurrence.
func normalizePlaylists(stored []models.Playlist) []models.Playlist {
	out := make([]models.Playlist, 0, len(stored))
	names := make(map[string]bool, len(stored))
	for _, p := range stored {
		name := strings.TrimSpace(p.Name)
		if name == "" || names[name] {
			continue
		}
		names[name] = true

		clean := models.NewPlaylist(name)
		for _, t := range p.Tracks {
			if t.Validate() == nil {
				clean.AddTrack(t)
			}
		}
		out = append(out, clean)
	}
	return out
}
