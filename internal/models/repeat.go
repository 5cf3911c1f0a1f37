package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/nextmusic/internal/shared"
)

// RepeatMode is the policy applied when the current track ends.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatPlaylist
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatPlaylist:
		return "playlist"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Next cycles off -> playlist -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatPlaylist
	case RepeatPlaylist:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode parses the String form.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return RepeatOff, nil
	case "playlist", "all":
		return RepeatPlaylist, nil
	case "one", "track":
		return RepeatOne, nil
	default:
		return RepeatOff, fmt.Errorf("%w: unknown repeat mode %q", shared.ErrInvalidArgument, s)
	}
}
