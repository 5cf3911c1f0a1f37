package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/services"
)

// MockCatalog is a test double for [services.Catalog]
type MockCatalog struct {
	mu sync.Mutex

	SearchResults map[string][]models.Track
	SearchErr     error
	TrendingItems []models.Track
	Generated     *services.GeneratedPlaylist
	GenerateErr   error
	// Block, when set, makes calls wait until it is closed or ctx ends.
	Block chan struct{}

	queries []string
	prompts []string
}

func (m *MockCatalog) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockCatalog) Search(ctx context.Context, query string) ([]models.Track, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return []models.Track{}, nil
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[query], nil
}

func (m *MockCatalog) Trending(ctx context.Context, region string) ([]models.Track, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.TrendingItems, nil
}

func (m *MockCatalog) GeneratePlaylist(ctx context.Context, prompt string) (*services.GeneratedPlaylist, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.Generated, m.GenerateErr
}

// Queries returns the search queries received.
func (m *MockCatalog) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Prompts returns the generation prompts received.
func (m *MockCatalog) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// MemoryStore keeps playlists and history in memory.
type MemoryStore struct {
	mu        sync.Mutex
	Playlists []models.Playlist
	History   []models.Track
	SaveErr   error
	Saves     int
}

func (s *MemoryStore) LoadPlaylists() []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Playlists == nil {
		return nil
	}
	out := make([]models.Playlist, len(s.Playlists))
	for i, p := range s.Playlists {
		out[i] = p.Clone()
	}
	return out
}

func (s *MemoryStore) SaveAll(playlists []models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Playlists = make([]models.Playlist, len(playlists))
	for i, p := range playlists {
		s.Playlists[i] = p.Clone()
	}
	return nil
}

func (s *MemoryStore) LoadHistory() []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.History == nil {
		return nil
	}
	return append([]models.Track{}, s.History...)
}

func (s *MemoryStore) SaveHistory(history []models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.History = append([]models.Track{}, history...)
	return nil
}

// Stored returns a snapshot of the saved playlists.
func (s *MemoryStore) Stored() []models.Playlist {
	return s.LoadPlaylists()
}

// StoredHistory returns a snapshot of the saved history.
func (s *MemoryStore) StoredHistory() []models.Track {
	return s.LoadHistory()
}
