package player

import "github.com/desertthunder/nextmusic/internal/models"

// Readiness is the widget lifecycle as seen by the coordinator.
type Readiness int

const (
	Uninitialized Readiness = iota
	Initializing
	Ready
)

func (r Readiness) String() string {
	switch r {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Session is a snapshot of the playback state.
type Session struct {
	Queue        []models.Track
	CurrentIndex int // -1 when Queue is empty
	IsPlaying    bool
	Progress     float64
	Duration     float64
	Volume       float64 // 0..1
	Shuffle      bool
	Repeat       models.RepeatMode
	Readiness    Readiness
}

// CurrentTrack returns the track at CurrentIndex.
func (s Session) CurrentTrack() (models.Track, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue) {
		return models.Track{}, false
	}
	return s.Queue[s.CurrentIndex], true
}

// Upcoming returns the tracks after the current one.
func (s Session) Upcoming() []models.Track {
	if s.CurrentIndex < 0 || s.CurrentIndex+1 >= len(s.Queue) {
		return nil
	}
	return s.Queue[s.CurrentIndex+1:]
}
