package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/nextmusic/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	if n := i.playlist.Len(); n != 1 {
		return fmt.Sprintf("%d tracks", n)
	}
	return "1 track"
}

// trackItem wraps [models.Track] to implement [list.Item]. current marks the playing queue entry.
type trackItem struct {
	track   models.Track
	current bool
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if i.current {
		return "▶ " + i.track.Title
	}
	return i.track.Title
}
func (i trackItem) Description() string { return i.track.Artist }

func newList(title, singular, plural string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName(singular, plural)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	return items
}

func trackItems(tracks []models.Track, current int) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t, current: i == current}
	}
	return items
}

// listTracks returns the tracks held by l in order.
func listTracks(l list.Model) []models.Track {
	items := l.Items()
	out := make([]models.Track, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(trackItem); ok {
			out = append(out, ti.track)
		}
	}
	return out
}

func selectedTrack(l list.Model) (models.Track, bool) {
	if ti, ok := l.SelectedItem().(trackItem); ok {
		return ti.track, true
	}
	return models.Track{}, false
}
