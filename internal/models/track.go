package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/nextmusic/internal/shared"
)

// Track is a playable unit. The JSON layout is the persisted one.
type Track struct {
	ID       string `json:"id"`
	VideoID  string `json:"videoId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AlbumArt string `json:"albumArt"`
}

// NewTrack builds a validated Track.
func NewTrack(id, videoID, title, artist, albumArt string) (Track, error) {
	t := Track{
		ID:       strings.TrimSpace(id),
		VideoID:  strings.TrimSpace(videoID),
		Title:    title,
		Artist:   artist,
		AlbumArt: albumArt,
	}
	if err := t.Validate(); err != nil {
		return Track{}, err
	}
	return t, nil
}

// Validate checks the identity fields.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", shared.ErrInvalidTrack)
	}
	if t.VideoID == "" {
		return fmt.Errorf("%w: video id is required", shared.ErrInvalidTrack)
	}
	return nil
}

// Equal reports whether both tracks share an id.
func (t Track) Equal(o Track) bool {
	return t.ID == o.ID
}

// String renders "Title - Artist".
func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " - " + t.Artist
}

// VideoIDs returns the video ids of tracks in order, the form a media widget loads.
func VideoIDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.VideoID
	}
	return ids
}
