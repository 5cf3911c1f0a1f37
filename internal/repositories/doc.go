// Package repositories implements SQLite persistence for the player's library.
//
// Storage is a flat key/value table, so the layout of each value is owned by the caller:
//   - [BlobRepository] : raw Get/Put/Delete/Keys over the kv_store table
//   - [Store] : playlists and history encoded as JSON blobs under fixed keys
//
// Loads never fail. A missing key yields nil, a corrupt value is logged and also yields nil, and a
// stored empty list yields an empty non-nil slice so callers can tell "never saved" from "saved empty".
package repositories
