// Package library holds the user's playlists and recently played tracks.
//
// Both types keep their state in memory and write through to a store after every mutation.
// Save failures are logged and never returned, so the in-memory state stays authoritative for the
// rest of the run.
package library
