package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/nextmusic/internal/shared"
)

func newTestYouTube(t *testing.T, handler http.HandlerFunc) (*YouTubeService, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := shared.YouTubeConfig{APIKey: "test-key", Region: "US", BaseURL: server.URL}
	return NewYouTubeService(cfg, 5, nil), &calls
}

func TestYouTubeService(t *testing.T) {
	ctx := context.Background()

	t.Run("Search", func(t *testing.T) {
		t.Run("empty query makes no request", func(t *testing.T) {
			svc, calls := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected request")
			})

			tracks, err := svc.Search(ctx, "   ")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tracks == nil || len(tracks) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", tracks)
			}
			if calls.Load() != 0 {
				t.Errorf("expected zero calls, got %d", calls.Load())
			}
		})

		t.Run("maps items", func(t *testing.T) {
			svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/youtube/v3/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("q") != "lofi" || q.Get("type") != "video" || q.Get("videoCategoryId") != "10" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				if q.Get("key") != "test-key" {
					t.Errorf("expected api key in query, got %q", q.Get("key"))
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"items":[
					{"id":{"kind":"youtube#video","videoId":"v1"},"snippet":{"title":"Rock &amp; Roll","channelTitle":"Band","thumbnails":{"default":{"url":"d"},"high":{"url":"h"}}}},
					{"id":{"kind":"youtube#channel"},"snippet":{"title":"No video"}},
					{"id":{"kind":"youtube#video","videoId":"v2"},"snippet":{"title":"Two","channelTitle":"Other","thumbnails":{"medium":{"url":"m"}}}}
				]}`))
			})

			tracks, err := svc.Search(ctx, "lofi")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}

			first := tracks[0]
			if first.ID != "v1" || first.VideoID != "v1" {
				t.Errorf("unexpected ids %+v", first)
			}
			if first.Title != "Rock & Roll" {
				t.Errorf("expected unescaped title, got %q", first.Title)
			}
			if first.Artist != "Band" || first.AlbumArt != "h" {
				t.Errorf("unexpected mapping %+v", first)
			}
			if tracks[1].AlbumArt != "m" {
				t.Errorf("expected medium thumbnail fallback, got %q", tracks[1].AlbumArt)
			}
		})

		t.Run("quota exceeded", func(t *testing.T) {
			svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"code":403,"message":"quota","errors":[{"domain":"youtube.quota","reason":"quotaExceeded","message":"quota"}]}}`))
			})

			_, err := svc.Search(ctx, "anything")
			if !errors.Is(err, ErrQuotaExceeded) {
				t.Fatalf("expected ErrQuotaExceeded, got %v", err)
			}

			var ce *CatalogError
			if !errors.As(err, &ce) || ce.Status != http.StatusForbidden {
				t.Errorf("expected CatalogError with status 403, got %v", err)
			}
		})

		t.Run("other 4xx is bad request", func(t *testing.T) {
			svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"code":400,"message":"bad","errors":[{"reason":"keyInvalid"}]}}`))
			})

			if _, err := svc.Search(ctx, "anything"); !errors.Is(err, ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})

		t.Run("5xx is unreachable", func(t *testing.T) {
			svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})

			if _, err := svc.Search(ctx, "anything"); !errors.Is(err, ErrUnreachable) {
				t.Errorf("expected ErrUnreachable, got %v", err)
			}
		})

		t.Run("undecodable 200 body is malformed", func(t *testing.T) {
			svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"items": not json`))
			})

			_, err := svc.Search(ctx, "anything")
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if errors.Is(err, ErrUnreachable) {
				t.Errorf("decode failure must not read as unreachable: %v", err)
			}
		})

		t.Run("missing key", func(t *testing.T) {
			svc := NewYouTubeService(shared.YouTubeConfig{}, 5, nil)
			if _, err := svc.Search(ctx, "anything"); !errors.Is(err, ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})
	})

	t.Run("Trending", func(t *testing.T) {
		svc, _ := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/youtube/v3/videos" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("chart") != "mostPopular" || q.Get("regionCode") != "US" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"items":[{"id":"t1","snippet":{"title":"Hit","channelTitle":"Star","thumbnails":{"high":{"url":"h"}}}}]}`))
		})

		tracks, err := svc.Trending(ctx, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" || tracks[0].Artist != "Star" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})
}

func TestCatalogError(t *testing.T) {
	t.Run("quota has its own message", func(t *testing.T) {
		quota := &CatalogError{Kind: ErrQuotaExceeded, Service: "youtube"}
		other := &CatalogError{Kind: ErrUnreachable, Service: "youtube"}
		if quota.UserMessage() == other.UserMessage() {
			t.Error("expected distinct quota message")
		}
	})

	t.Run("classifyStatus", func(t *testing.T) {
		tc := []struct {
			status int
			reason string
			want   error
		}{
			{status: 403, reason: "dailyLimitExceeded", want: ErrQuotaExceeded},
			{status: 403, reason: "forbidden", want: ErrBadRequest},
			{status: 429, want: ErrQuotaExceeded},
			{status: 400, reason: "RESOURCE_EXHAUSTED", want: ErrQuotaExceeded},
			{status: 404, want: ErrBadRequest},
			{status: 502, want: ErrUnreachable},
		}
		for _, tt := range tc {
			if got := classifyStatus(tt.status, tt.reason); got != tt.want {
				t.Errorf("classifyStatus(%d, %q) = %v, want %v", tt.status, tt.reason, got, tt.want)
			}
		}
	})

	t.Run("unwraps context errors", func(t *testing.T) {
		err := transportError("youtube", context.DeadlineExceeded)
		if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, ErrUnreachable) {
			t.Errorf("expected unreachable wrapping deadline, got %v", err)
		}
	})

	t.Run("UserMessage falls back to error text", func(t *testing.T) {
		if got := UserMessage(errors.New("plain")); got != "plain" {
			t.Errorf("expected plain, got %q", got)
		}
	})
}
