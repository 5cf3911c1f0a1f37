package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrPlaylistExists     = fmt.Errorf("playlist already exists")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Storage errors
	ErrKeyNotFound    = fmt.Errorf("key not found")
	ErrStorageCorrupt = fmt.Errorf("stored data is corrupt")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidTrack    = fmt.Errorf("invalid track")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
