// package services defines the Catalog interface for searching and generating music
//
// YouTube Data API (search, trending), Gemini (generation)
package services

import (
	"context"

	"github.com/desertthunder/nextmusic/internal/models"
)

// Catalog is the remote source of tracks.
type Catalog interface {
	// Search returns tracks matching query. An empty query returns an empty slice without a remote call.
	Search(ctx context.Context, query string) ([]models.Track, error)

	// Trending returns the most popular music videos for region (ISO 3166-1 alpha-2).
	Trending(ctx context.Context, region string) ([]models.Track, error)

	// GeneratePlaylist asks the generator for a playlist matching prompt and resolves its songs to tracks.
	GeneratePlaylist(ctx context.Context, prompt string) (*GeneratedPlaylist, error)
}

// Searcher performs keyword and chart lookups.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Track, error)
	Trending(ctx context.Context, region string) ([]models.Track, error)
}

// Generator suggests songs for a free text description.
type Generator interface {
	Suggest(ctx context.Context, prompt string) (*Suggestion, error)
}

// GeneratedPlaylist is a named list of resolved tracks.
type GeneratedPlaylist struct {
	Name   string
	Tracks []models.Track
}

// Suggestion is the raw generator output before resolution.
type Suggestion struct {
	Name  string           `json:"playlistName"`
	Songs []SongSuggestion `json:"songs"`
}

// SongSuggestion identifies a song by title and artist.
type SongSuggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Query returns the search string used to resolve the song.
func (s SongSuggestion) Query() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Title + " " + s.Artist
}
