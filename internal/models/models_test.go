package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/nextmusic/internal/shared"
)

func TestTrack(t *testing.T) {
	t.Run("NewTrack", func(t *testing.T) {
		tc := []struct {
			name    string
			id      string
			videoID string
			wantErr bool
		}{
			{name: "valid", id: "abc", videoID: "abc"},
			{name: "missing id", id: "", videoID: "abc", wantErr: true},
			{name: "missing video id", id: "abc", videoID: "  ", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewTrack(tt.id, tt.videoID, "Title", "Artist", "")
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidTrack) {
						t.Fatalf("expected ErrInvalidTrack, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("Equal compares ids", func(t *testing.T) {
		a := Track{ID: "1", VideoID: "v1", Title: "A"}
		b := Track{ID: "1", VideoID: "v2", Title: "B"}
		if !a.Equal(b) {
			t.Error("tracks with the same id should be equal")
		}
		if a.Equal(Track{ID: "2"}) {
			t.Error("tracks with different ids should not be equal")
		}
	})

	t.Run("JSON layout", func(t *testing.T) {
		data, err := json.Marshal(Track{ID: "1", VideoID: "v", Title: "T", Artist: "A", AlbumArt: "u"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		for _, key := range []string{`"id"`, `"videoId"`, `"title"`, `"artist"`, `"albumArt"`} {
			if !strings.Contains(string(data), key) {
				t.Errorf("expected %s in %s", key, data)
			}
		}
	})

	t.Run("VideoIDs", func(t *testing.T) {
		ids := VideoIDs([]Track{{ID: "a", VideoID: "va"}, {ID: "b", VideoID: "vb"}})
		if len(ids) != 2 || ids[0] != "va" || ids[1] != "vb" {
			t.Errorf("unexpected ids %v", ids)
		}
	})
}

func TestPlaylist(t *testing.T) {
	t1 := Track{ID: "1", VideoID: "1"}
	t2 := Track{ID: "2", VideoID: "2"}

	t.Run("AddTrack is idempotent", func(t *testing.T) {
		p := NewPlaylist("Mix")
		if !p.AddTrack(t1) {
			t.Fatal("first add should succeed")
		}
		if p.AddTrack(t1) {
			t.Error("second add of the same id should report false")
		}
		if p.Len() != 1 {
			t.Errorf("expected 1 track, got %d", p.Len())
		}
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		p := NewPlaylist("Mix")
		p.AddTrack(t1)
		p.AddTrack(t2)

		if !p.RemoveTrack("1") {
			t.Fatal("expected removal")
		}
		if p.Contains("1") || !p.Contains("2") {
			t.Errorf("unexpected tracks after removal: %+v", p.Tracks)
		}
		if p.RemoveTrack("missing") {
			t.Error("removing a missing id should report false")
		}
	})

	t.Run("Clone is independent", func(t *testing.T) {
		p := NewPlaylist("Mix")
		p.AddTrack(t1)
		c := p.Clone()
		c.AddTrack(t2)
		c.Tracks[0].Title = "changed"

		if p.Len() != 1 || p.Tracks[0].Title != "" {
			t.Errorf("clone mutated the original: %+v", p.Tracks)
		}
	})
}

func TestRepeatMode(t *testing.T) {
	t.Run("Next cycles", func(t *testing.T) {
		m := RepeatOff
		want := []RepeatMode{RepeatPlaylist, RepeatOne, RepeatOff}
		for _, w := range want {
			m = m.Next()
			if m != w {
				t.Fatalf("expected %v, got %v", w, m)
			}
		}
	})

	t.Run("ParseRepeatMode", func(t *testing.T) {
		for _, m := range []RepeatMode{RepeatOff, RepeatPlaylist, RepeatOne} {
			got, err := ParseRepeatMode(m.String())
			if err != nil || got != m {
				t.Errorf("round trip of %v gave %v, %v", m, got, err)
			}
		}
		if _, err := ParseRepeatMode("sometimes"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestHistory(t *testing.T) {
	track := func(id string) Track { return Track{ID: id, VideoID: id} }

	t.Run("PushHistory moves existing to front", func(t *testing.T) {
		h := []Track{track("a"), track("b"), track("c")}
		h = PushHistory(h, track("c"))
		if len(h) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(h))
		}
		if h[0].ID != "c" || h[1].ID != "a" || h[2].ID != "b" {
			t.Errorf("unexpected order %v", h)
		}
	})

	t.Run("PushHistory caps length", func(t *testing.T) {
		var h []Track
		for i := range MaxHistory + 10 {
			h = PushHistory(h, track(string(rune('A'+i))))
		}
		if len(h) != MaxHistory {
			t.Errorf("expected %d entries, got %d", MaxHistory, len(h))
		}
	})

	t.Run("NormalizeHistory", func(t *testing.T) {
		h := NormalizeHistory([]Track{track("a"), {ID: "bad"}, track("a"), track("b")})
		if len(h) != 2 || h[0].ID != "a" || h[1].ID != "b" {
			t.Errorf("unexpected normalised history %v", h)
		}
	})
}
