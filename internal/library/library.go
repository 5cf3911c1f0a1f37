package library

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// PlaylistStore persists the playlist library.
type PlaylistStore interface {
	LoadPlaylists() []models.Playlist
	SaveAll(playlists []models.Playlist) error
}

// defaultPlaylistNames seed a library that has never been saved.
var defaultPlaylistNames = []string{
	"Liked Songs",
	"Lofi hip hop music - beats to relax/study to",
	"Rock Classics",
	"Workout Mix",
	"Coding Focus",
	"Late Night Drive",
}

// DefaultPlaylists returns the empty playlists a new library starts with.
func DefaultPlaylists() []models.Playlist {
	out := make([]models.Playlist, len(defaultPlaylistNames))
	for i, name := range defaultPlaylistNames {
		out[i] = models.NewPlaylist(name)
	}
	return out
}

// Library is the ordered set of named playlists.
type Library struct {
	mu        sync.RWMutex
	playlists []models.Playlist
	store     PlaylistStore
	logger    *log.Logger
}

// NewLibrary loads playlists from store, seeding defaults when nothing was ever saved.
func NewLibrary(store PlaylistStore, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NopLogger()
	}
	playlists := store.LoadPlaylists()
	if playlists == nil {
		playlists = DefaultPlaylists()
	}
	return &Library{playlists: playlists, store: store, logger: logger}
}

// Playlists returns copies of every playlist in order.
func (l *Library) Playlists() []models.Playlist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Playlist, len(l.playlists))
	for i, p := range l.playlists {
		out[i] = p.Clone()
	}
	return out
}

// Names returns the playlist names in order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, len(l.playlists))
	for i, p := range l.playlists {
		names[i] = p.Name
	}
	return names
}

// Get returns a copy of the named playlist.
func (l *Library) Get(name string) (models.Playlist, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.indexOf(name)
	if i < 0 {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	return l.playlists[i].Clone(), nil
}

// Create adds an empty playlist. Names are trimmed and must be unique.
func (l *Library) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexOf(name) >= 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistExists, name)
	}
	l.playlists = append(l.playlists, models.NewPlaylist(name))
	l.saveLocked()
	return nil
}

// Delete removes the named playlist.
func (l *Library) Delete(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	l.playlists = append(l.playlists[:i:i], l.playlists[i+1:]...)
	l.saveLocked()
	return nil
}

// AddTrack appends t to the named playlist. It reports false when the track was already there.
func (l *Library) AddTrack(name string, t models.Track) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(name)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if !l.playlists[i].AddTrack(t) {
		return false, nil
	}
	l.saveLocked()
	return true, nil
}

// RemoveTrack removes the track with id from the named playlist.
func (l *Library) RemoveTrack(name, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if !l.playlists[i].RemoveTrack(id) {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	l.saveLocked()
	return nil
}

// SaveGenerated stores tracks as a new playlist. When name is taken a " (n)" suffix is added.
// Returns the name used.
func (l *Library) SaveGenerated(name string, tracks []models.Track) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "AI Playlist"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	unique := name
	for n := 2; l.indexOf(unique) >= 0; n++ {
		unique = fmt.Sprintf("%s (%d)", name, n)
	}

	p := models.NewPlaylist(unique)
	for _, t := range tracks {
		if t.Validate() == nil {
			p.AddTrack(t)
		}
	}
	l.playlists = append(l.playlists, p)
	l.saveLocked()
	return unique, nil
}

func (l *Library) indexOf(name string) int {
	for i, p := range l.playlists {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (l *Library) saveLocked() {
	if err := l.store.SaveAll(l.playlists); err != nil {
		l.logger.Warn("failed to save playlists", "error", err)
	}
}
