package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// fakeMPV answers IPC requests on a unix socket and records the commands it receives.
type fakeMPV struct {
	t        *testing.T
	listener net.Listener
	props    map[string]any

	mu       sync.Mutex
	conn     net.Conn
	commands [][]any
}

func newFakeMPV(t *testing.T) *fakeMPV {
	t.Helper()
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "mpv.sock")
	l, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	f := &fakeMPV{
		t:        t,
		listener: l,
		props:    map[string]any{"time-pos": 12.5, "duration": 200.0, "playlist-pos": 1},
	}
	go f.serve()
	return f
}

func (f *fakeMPV) socket() string { return f.listener.Addr().String() }

func (f *fakeMPV) serve() {
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()

		resp := map[string]any{"request_id": req.RequestID, "error": "success"}
		if len(req.Command) == 2 && req.Command[0] == "get_property" {
			f.mu.Lock()
			v, ok := f.props[req.Command[1].(string)]
			f.mu.Unlock()
			if ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		}
		f.write(resp)
	}
}

func (f *fakeMPV) write(v any) {
	data, _ := json.Marshal(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Write(append(data, '\n'))
	}
}

// event pushes an mpv event to the client.
func (f *fakeMPV) event(fields map[string]any) {
	f.write(fields)
}

// sent returns the commands received so far, each rendered as space-joined words.
func (f *fakeMPV) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, c := range f.commands {
		parts := make([]string, len(c))
		for j, p := range c {
			parts[j] = fmt.Sprint(p)
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}

func (f *fakeMPV) waitSent(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, c := range f.sent() {
			if c == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("command %q not received, got %v", want, f.sent())
}

type stateRecorder struct {
	mu     sync.Mutex
	states []player.PlayerState
}

func (r *stateRecorder) emit(s player.PlayerState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) wait(t *testing.T, want player.PlayerState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, s := range r.states {
			if s == want {
				r.mu.Unlock()
				return
			}
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state %v not emitted", want)
}

func dialFake(t *testing.T) (*Widget, *fakeMPV, *stateRecorder) {
	t.Helper()
	f := newFakeMPV(t)
	rec := &stateRecorder{}
	w, err := Dial(context.Background(), f.socket(), rec.emit, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, f, rec
}

func TestWidgetCommands(t *testing.T) {
	t.Run("observes properties on connect", func(t *testing.T) {
		_, f, _ := dialFake(t)
		f.waitSent(t, "observe_property 1 pause")
		f.waitSent(t, "observe_property 2 idle-active")
	})

	t.Run("LoadPlaylist", func(t *testing.T) {
		w, f, _ := dialFake(t)
		w.LoadPlaylist([]string{"a", "b", "c"}, 2)

		f.waitSent(t, "loadfile "+shared.WatchURL("a")+" replace")
		f.waitSent(t, "loadfile "+shared.WatchURL("c")+" append")
		f.waitSent(t, "playlist-play-index 2")
		f.waitSent(t, "set_property pause false")
	})

	t.Run("transport commands", func(t *testing.T) {
		w, f, _ := dialFake(t)
		w.PauseVideo()
		w.NextVideo()
		w.PreviousVideo()
		w.PlayVideoAt(3)
		w.SeekTo(30)
		w.SetVolume(55)
		w.SetShuffle(true)
		w.SetShuffle(false)

		for _, want := range []string{
			"set_property pause true",
			"playlist-next",
			"playlist-prev",
			"playlist-play-index 3",
			"seek 30 absolute",
			"set_property volume 55",
			"playlist-shuffle",
			"playlist-unshuffle",
		} {
			f.waitSent(t, want)
		}
	})

	t.Run("getters", func(t *testing.T) {
		w, _, _ := dialFake(t)
		if got := w.CurrentTime(); got != 12.5 {
			t.Errorf("expected time 12.5, got %v", got)
		}
		if got := w.Duration(); got != 200 {
			t.Errorf("expected duration 200, got %v", got)
		}
		if got := w.PlaylistIndex(); got != 1 {
			t.Errorf("expected index 1, got %d", got)
		}
	})

	t.Run("unavailable property", func(t *testing.T) {
		w, f, _ := dialFake(t)
		f.mu.Lock()
		delete(f.props, "playlist-pos")
		f.mu.Unlock()
		if got := w.PlaylistIndex(); got != -1 {
			t.Errorf("expected -1, got %d", got)
		}
	})

	t.Run("shuffled playlist reports load order", func(t *testing.T) {
		w, f, _ := dialFake(t)
		w.LoadPlaylist([]string{"a", "b", "c"}, 0)
		w.SetShuffle(true)

		// mpv reordered to [c, a, b] and is playing a.
		f.mu.Lock()
		f.props["playlist-pos"] = 1
		f.props["path"] = shared.WatchURL("a")
		f.mu.Unlock()

		if got := w.PlaylistIndex(); got != 0 {
			t.Errorf("expected load-order index 0, got %d", got)
		}

		f.mu.Lock()
		delete(f.props, "path")
		f.mu.Unlock()
		if got := w.PlaylistIndex(); got != -1 {
			t.Errorf("expected -1 without a path while shuffled, got %d", got)
		}
	})

	t.Run("PlayVideoAt follows shuffled positions", func(t *testing.T) {
		w, f, _ := dialFake(t)
		w.LoadPlaylist([]string{"a", "b", "c"}, 0)
		w.SetShuffle(true)

		f.mu.Lock()
		f.props["playlist"] = []map[string]any{
			{"filename": shared.WatchURL("c")},
			{"filename": shared.WatchURL("a")},
			{"filename": shared.WatchURL("b")},
		}
		f.mu.Unlock()

		w.PlayVideoAt(0)
		f.waitSent(t, "playlist-play-index 1")
	})

	t.Run("closed widget", func(t *testing.T) {
		w, _, _ := dialFake(t)
		if err := w.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if got := w.PlaylistIndex(); got != -1 {
			t.Errorf("expected -1 after close, got %d", got)
		}
		w.PlayVideo()
	})
}

func TestWidgetEvents(t *testing.T) {
	t.Run("file lifecycle", func(t *testing.T) {
		w, f, rec := dialFake(t)
		f.waitSent(t, "observe_property 2 idle-active")

		f.event(map[string]any{"event": "start-file"})
		rec.wait(t, player.StateBuffering)

		f.event(map[string]any{"event": "playback-restart"})
		rec.wait(t, player.StatePlaying)
		if w.PlayerState() != player.StatePlaying {
			t.Errorf("expected playing, got %v", w.PlayerState())
		}

		f.event(map[string]any{"event": "property-change", "id": 1, "name": "pause", "data": true})
		rec.wait(t, player.StatePaused)

		f.event(map[string]any{"event": "end-file", "reason": "eof"})
		rec.wait(t, player.StateEnded)
	})

	t.Run("pause while idle is ignored", func(t *testing.T) {
		w, f, _ := dialFake(t)
		f.waitSent(t, "observe_property 2 idle-active")

		f.event(map[string]any{"event": "property-change", "id": 1, "name": "pause", "data": false})
		time.Sleep(30 * time.Millisecond)
		if w.PlayerState() != player.StateUnstarted {
			t.Errorf("expected unstarted, got %v", w.PlayerState())
		}
	})

	t.Run("stopped files do not end", func(t *testing.T) {
		w, f, _ := dialFake(t)
		f.waitSent(t, "observe_property 2 idle-active")

		f.event(map[string]any{"event": "start-file"})
		f.event(map[string]any{"event": "end-file", "reason": "stop"})
		time.Sleep(30 * time.Millisecond)
		if w.PlayerState() == player.StateEnded {
			t.Error("stop must not report ended")
		}
	})
}

func TestBootstrap(t *testing.T) {
	t.Run("attaches to an existing socket", func(t *testing.T) {
		f := newFakeMPV(t)
		boot := Bootstrap(shared.PlayerConfig{SocketPath: f.socket(), MPVPath: "/nonexistent/mpv"}, nil)

		w, err := boot(context.Background(), func(player.PlayerState) {})
		if err != nil {
			t.Fatalf("expected attach, got %v", err)
		}
		defer w.(*Widget).Close()
		f.waitSent(t, "observe_property 1 pause")
	})

	t.Run("spawn failure", func(t *testing.T) {
		boot := Bootstrap(shared.PlayerConfig{MPVPath: "/nonexistent/mpv"}, nil)
		if _, err := boot(context.Background(), nil); err == nil {
			t.Fatal("expected error when mpv cannot start")
		}
	})
}
