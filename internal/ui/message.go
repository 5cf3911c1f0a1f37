package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChanged MsgKind = iota
	MsgNotification
	MsgDismiss
	MsgSearchResult
	MsgTrending
	MsgProgressUpdate
	MsgGenerated
)

type tracksResult struct {
	tracks []models.Track
	err    error
}

type generatedResult struct {
	playlist *services.GeneratedPlaylist
	err      error
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg() Msg {
	return Msg{kind: MsgSessionChanged}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg() Msg {
	return Msg{kind: MsgNotification}
}

// dismissMsg is the constructor for [MsgDismiss]
func dismissMsg(id uint64) Msg {
	return Msg{kind: MsgDismiss, data: id}
}

// searchResultMsg is the constructor for [MsgSearchResult]
func searchResultMsg(r tasks.SearchResult) Msg {
	return Msg{kind: MsgSearchResult, data: r}
}

// trendingMsg is the constructor for [MsgTrending]
func trendingMsg(tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTrending, data: tracksResult{tracks, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// generatedMsg is the constructor for [MsgGenerated]
func generatedMsg(pl *services.GeneratedPlaylist, err error) Msg {
	return Msg{kind: MsgGenerated, data: generatedResult{pl, err}}
}
