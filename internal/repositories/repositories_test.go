package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func track(id string) models.Track {
	return models.Track{ID: id, VideoID: id, Title: "Song " + id, Artist: "Artist"}
}

func TestBlobRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))

		if err := repo.Put(ctx, "k", []byte("v1")); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		if err := repo.Put(ctx, "k", []byte("v2")); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, err := repo.Get(ctx, "k")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("expected v2, got %s", got)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))
		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))
		if err := repo.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		if err := repo.Delete(ctx, "k"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete(ctx, "k"); !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound on second delete, got %v", err)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))
		for _, k := range []string{"a", "b"} {
			if err := repo.Put(ctx, k, []byte("{}")); err != nil {
				t.Fatalf("failed to put %s: %v", k, err)
			}
		}

		keys, err := repo.Keys(ctx)
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 2 {
			t.Errorf("expected 2 keys, got %v", keys)
		}
	})
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing keys load as nil", func(t *testing.T) {
		store := NewStore(NewBlobRepository(setupTestDB(t)), nil)
		if got := store.LoadPlaylists(); got != nil {
			t.Errorf("expected nil playlists, got %v", got)
		}
		if got := store.LoadHistory(); got != nil {
			t.Errorf("expected nil history, got %v", got)
		}
	})

	t.Run("saved empty loads as empty non-nil", func(t *testing.T) {
		store := NewStore(NewBlobRepository(setupTestDB(t)), nil)
		if err := store.SaveAll(nil); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		got := store.LoadPlaylists()
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		store := NewStore(NewBlobRepository(setupTestDB(t)), nil)
		p := models.NewPlaylist("Focus")
		p.AddTrack(track("1"))
		p.AddTrack(track("2"))

		if err := store.SaveAll([]models.Playlist{p}); err != nil {
			t.Fatalf("failed to save playlists: %v", err)
		}
		if err := store.SaveHistory([]models.Track{track("2"), track("1")}); err != nil {
			t.Fatalf("failed to save history: %v", err)
		}

		playlists := store.LoadPlaylists()
		if len(playlists) != 1 || playlists[0].Name != "Focus" || playlists[0].Len() != 2 {
			t.Fatalf("unexpected playlists %+v", playlists)
		}
		history := store.LoadHistory()
		if len(history) != 2 || history[0].ID != "2" {
			t.Errorf("unexpected history %+v", history)
		}
	})

	t.Run("corrupt value loads as nil and warns", func(t *testing.T) {
		var buf bytes.Buffer
		blobs := NewBlobRepository(setupTestDB(t))
		store := NewStore(blobs, shared.NewLogger(&buf))

		if err := blobs.Put(ctx, PlaylistsKey, []byte("{not json")); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		if got := store.LoadPlaylists(); got != nil {
			t.Errorf("expected nil for corrupt value, got %v", got)
		}
		if !strings.Contains(buf.String(), PlaylistsKey) {
			t.Errorf("expected warning mentioning key, got %q", buf.String())
		}
	})

	t.Run("normalises loaded data", func(t *testing.T) {
		blobs := NewBlobRepository(setupTestDB(t))
		store := NewStore(blobs, nil)

		raw := `[
			{"name":"A","tracks":[{"id":"1","videoId":"1"},{"id":"1","videoId":"1"},{"id":"","videoId":"x"}]},
			{"name":"A","tracks":[]},
			{"name":"  ","tracks":[]},
			{"name":"B","tracks":null}
		]`
		if err := blobs.Put(ctx, PlaylistsKey, []byte(raw)); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		got := store.LoadPlaylists()
		if len(got) != 2 {
			t.Fatalf("expected 2 playlists, got %+v", got)
		}
		if got[0].Name != "A" || got[0].Len() != 1 {
			t.Errorf("expected A with one track, got %+v", got[0])
		}
		if got[1].Name != "B" || got[1].Tracks == nil {
			t.Errorf("expected B with non-nil tracks, got %+v", got[1])
		}
	})

	t.Run("history is capped", func(t *testing.T) {
		store := NewStore(NewBlobRepository(setupTestDB(t)), nil)
		var history []models.Track
		for i := range models.MaxHistory + 5 {
			history = append(history, track(strings.Repeat("x", i+1)))
		}
		if err := store.SaveHistory(history); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if got := store.LoadHistory(); len(got) != models.MaxHistory {
			t.Errorf("expected %d entries, got %d", models.MaxHistory, len(got))
		}
	})
}
