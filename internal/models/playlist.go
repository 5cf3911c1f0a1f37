package models

// Playlist is a named ordered collection of tracks. Names are unique within a library.
type Playlist struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// NewPlaylist creates an empty playlist.
func NewPlaylist(name string) Playlist {
	return Playlist{Name: name, Tracks: []Track{}}
}

// Contains reports whether a track with id is in the playlist.
func (p *Playlist) Contains(id string) bool {
	return p.indexOf(id) >= 0
}

// AddTrack appends t unless a track with the same id is present.
// Returns false when the playlist was left untouched.
func (p *Playlist) AddTrack(t Track) bool {
	if p.Contains(t.ID) {
		return false
	}
	p.Tracks = append(p.Tracks, t)
	return true
}

// RemoveTrack drops the track with id. Returns false when it was not present.
func (p *Playlist) RemoveTrack(id string) bool {
	i := p.indexOf(id)
	if i < 0 {
		return false
	}
	p.Tracks = append(p.Tracks[:i:i], p.Tracks[i+1:]...)
	return true
}

// Len returns the number of tracks.
func (p Playlist) Len() int { return len(p.Tracks) }

// Clone returns a copy that shares no backing array with p.
func (p Playlist) Clone() Playlist {
	tracks := make([]Track, len(p.Tracks))
	copy(tracks, p.Tracks)
	return Playlist{Name: p.Name, Tracks: tracks}
}

func (p *Playlist) indexOf(id string) int {
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
