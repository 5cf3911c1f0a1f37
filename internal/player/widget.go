package player

import "context"

// PlayerState is a widget state code.
type PlayerState int

const (
	StateUnstarted PlayerState = -1
	StateEnded     PlayerState = 0
	StatePlaying   PlayerState = 1
	StatePaused    PlayerState = 2
	StateBuffering PlayerState = 3
	StateCued      PlayerState = 5
)

func (s PlayerState) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return "unknown"
	}
}

// Widget is the external media player.
//
// Indexes passed to PlayVideoAt and returned by PlaylistIndex are positions in the list given to
// LoadPlaylist, whatever order shuffle plays it in.
type Widget interface {
	LoadPlaylist(videoIDs []string, startIndex int)
	PlayVideo()
	PauseVideo()
	NextVideo()
	PreviousVideo()
	PlayVideoAt(index int)
	SeekTo(seconds float64)
	SetVolume(percent int)
	SetShuffle(shuffle bool)

	CurrentTime() float64
	Duration() float64
	PlayerState() PlayerState
	PlaylistIndex() int
}

// Bootstrap creates a widget. It may block until the widget exists and must return promptly when
// ctx is cancelled. emit delivers every later state change.
type Bootstrap func(ctx context.Context, emit func(PlayerState)) (Widget, error)
