package library

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// HistoryStore persists recently played tracks.
type HistoryStore interface {
	LoadHistory() []models.Track
	SaveHistory(history []models.Track) error
}

// History is the bounded, most recent first list of played tracks.
type History struct {
	mu     sync.RWMutex
	tracks []models.Track
	store  HistoryStore
	logger *log.Logger
}

// NewHistory loads history from store.
func NewHistory(store HistoryStore, logger *log.Logger) *History {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &History{tracks: models.NormalizeHistory(store.LoadHistory()), store: store, logger: logger}
}

// Record moves or inserts t at the front.
func (h *History) Record(t models.Track) {
	if t.Validate() != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tracks = models.PushHistory(h.tracks, t)
	h.saveLocked()
}

// Tracks returns a copy of the history.
func (h *History) Tracks() []models.Track {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.tracks)
}

// Clear empties the history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tracks = []models.Track{}
	h.saveLocked()
}

func (h *History) saveLocked() {
	if err := h.store.SaveHistory(h.tracks); err != nil {
		h.logger.Warn("failed to save history", "error", err)
	}
}
