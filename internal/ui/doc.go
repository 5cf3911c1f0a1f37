// Package ui implements the interactive player using bubbletea's Elm architecture.
//
// The screen has five tabs:
//  1. [LibraryTab] : Browse playlists, open one to play, remove tracks, create or delete playlists
//  2. [SearchTab] : Debounced catalog search, trending when the query is empty
//  3. [QueueTab] : The coordinator's queue with the current track marked
//  4. [HistoryTab] : Recently started tracks
//  5. [AITab] : Describe a mood, generate a playlist, play or save it
//
// Below the tabs sit the notification toast and the player bar (track, progress, volume, shuffle
// and repeat). The [Model] listens to the coordinator, the notification bus and the search session
// through channel-reading commands that re-arm themselves after every message.
//
// Keyboard navigation uses vim-style bindings with contextual help via charmbracelet/bubbles/help.
package ui
