// Package tasks runs the long-lived and multi-step operations that sit between the view layer and the catalog.
//
// # Debounced Search
//
// [SearchSession] coalesces keystrokes: each [SearchSession.Submit] restarts a timer and bumps a
// sequence number. When the timer fires the search runs, and its result is delivered on
// [SearchSession.Results] only if no newer query has been submitted in the meantime. In-flight
// requests are never aborted; their responses are simply dropped once stale.
//
// # Playlist Generation
//
// [PlaylistEngine.Generate] wraps [services.Catalog.GeneratePlaylist] and reports progress while the
// request is outstanding, rotating through [LoadingMessages] every [MessageInterval].
//
// # Export
//
// [PlaylistEngine.Export] writes library playlists to disk with a pool of workers and records a
// manifest (export_manifest.json) next to the files.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates. A nil channel is allowed.
// Updates use select with default so a slow consumer never stalls the work.
package tasks
