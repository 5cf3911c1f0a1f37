// Package models defines the value types shared by every layer of the player.
//
//   - [Track] : a playable unit, identified by its id and backed by an external video id
//   - [Playlist] : a named, ordered collection of tracks with no duplicate ids
//   - [RepeatMode] : the repeat policy applied when a track ends
//
// Tracks compare by id. Constructors and [Track.Validate] reject tracks without an id or video id,
// which is how malformed catalog items are kept out of the library.
package models
