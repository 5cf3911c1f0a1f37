package player_test

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/player"
	tu "github.com/desertthunder/nextmusic/internal/testing"
)

const waitTimeout = 2 * time.Second

// readyCoordinator returns a started coordinator whose fake widget is already ready.
func readyCoordinator(t *testing.T, opts ...player.Option) (*player.Coordinator, *tu.FakeWidget) {
	t.Helper()
	w := tu.NewFakeWidget()
	c := player.NewCoordinator(w.Bootstrap(), append([]player.Option{player.WithPollInterval(10 * time.Millisecond)}, opts...)...)
	t.Cleanup(func() { c.Close() })

	c.Start(tu.Background(t))
	select {
	case <-c.Ready():
	case <-time.After(waitTimeout):
		t.Fatal("coordinator never became ready")
	}
	return c, w
}

func TestCoordinatorLifecycle(t *testing.T) {
	t.Run("starts uninitialized", func(t *testing.T) {
		c := player.NewCoordinator(tu.NewFakeWidget().Bootstrap())
		defer c.Close()

		s := c.Session()
		if s.Readiness != player.Uninitialized {
			t.Errorf("expected uninitialized, got %v", s.Readiness)
		}
		if s.CurrentIndex != -1 {
			t.Errorf("expected index -1, got %d", s.CurrentIndex)
		}
	})

	t.Run("initializing until bootstrap resolves", func(t *testing.T) {
		release := make(chan struct{})
		w := tu.NewFakeWidget()
		c := player.NewCoordinator(w.GatedBootstrap(release))
		defer c.Close()

		c.Start(tu.Background(t))
		if got := c.Session().Readiness; got != player.Initializing {
			t.Fatalf("expected initializing, got %v", got)
		}

		close(release)
		tu.WaitFor(t, waitTimeout, func() bool { return c.Session().Readiness == player.Ready }, "ready")
	})

	t.Run("bootstrap failure stays initializing", func(t *testing.T) {
		c := player.NewCoordinator(tu.FailingBootstrap(errors.New("boom")))
		defer c.Close()

		c.Start(tu.Background(t))
		time.Sleep(20 * time.Millisecond)

		if got := c.Session().Readiness; got != player.Initializing {
			t.Errorf("expected initializing after failure, got %v", got)
		}
		c.TogglePlayback()
		c.Advance()
	})

	t.Run("applies volume and shuffle on ready", func(t *testing.T) {
		release := make(chan struct{})
		w := tu.NewFakeWidget()
		c := player.NewCoordinator(w.GatedBootstrap(release))
		defer c.Close()

		c.SetVolume(0.42)
		c.SetShuffleMode(true)
		c.Start(tu.Background(t))
		close(release)
		<-c.Ready()

		if w.Volume() != 42 {
			t.Errorf("expected volume 42, got %d", w.Volume())
		}
		if w.Count("SetShuffle(true)") == 0 {
			t.Errorf("expected shuffle forwarded, calls %v", w.Calls())
		}
	})

	t.Run("Close closes the widget", func(t *testing.T) {
		c, w := readyCoordinator(t)
		if err := c.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if !w.Closed() {
			t.Error("expected widget to be closed")
		}
		c.LoadAndPlay(tu.Tracks(2), 0)
		if w.Count("LoadPlaylist([vt0 vt1],0)") != 0 {
			t.Error("commands after close must not reach the widget")
		}
	})
}

func TestLoadAndPlay(t *testing.T) {
	t.Run("sets session regardless of readiness", func(t *testing.T) {
		tracks := tu.Tracks(3)

		notReady := player.NewCoordinator(tu.NewFakeWidget().Bootstrap())
		defer notReady.Close()
		ready, _ := readyCoordinator(t)

		for name, c := range map[string]*player.Coordinator{"not ready": notReady, "ready": ready} {
			t.Run(name, func(t *testing.T) {
				c.LoadAndPlay(tracks, 1)
				s := c.Session()
				if s.CurrentIndex != 1 || len(s.Queue) != 3 || !s.IsPlaying {
					t.Errorf("unexpected session %+v", s)
				}
				if track, ok := s.CurrentTrack(); !ok || track.ID != "t1" {
					t.Errorf("expected t1 current, got %v", track)
				}
			})
		}
	})

	t.Run("copies the input slice", func(t *testing.T) {
		c, _ := readyCoordinator(t)
		tracks := tu.Tracks(2)
		c.LoadAndPlay(tracks, 0)
		tracks[0].Title = "mutated"

		if c.Session().Queue[0].Title == "mutated" {
			t.Error("queue must not alias the caller's slice")
		}
	})

	t.Run("out of range start clamps to zero", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(2), 7)

		if got := c.Session().CurrentIndex; got != 0 {
			t.Errorf("expected index 0, got %d", got)
		}
		if w.Count("LoadPlaylist([vt0 vt1],0)") != 1 {
			t.Errorf("unexpected calls %v", w.Calls())
		}
	})

	t.Run("empty list clears the session", func(t *testing.T) {
		c, _ := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(2), 0)
		c.LoadAndPlay(nil, 0)

		s := c.Session()
		if len(s.Queue) != 0 || s.CurrentIndex != -1 || s.IsPlaying {
			t.Errorf("expected cleared session, got %+v", s)
		}
	})

	t.Run("forwards shuffle after loading", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.SetShuffleMode(true)
		c.LoadAndPlay(tu.Tracks(2), 0)

		calls := w.Calls()
		last := calls[len(calls)-1]
		if last != "SetShuffle(true)" || calls[len(calls)-2] != "LoadPlaylist([vt0 vt1],0)" {
			t.Errorf("expected load followed by shuffle, got %v", calls)
		}
	})

	t.Run("pending load is replayed once on ready", func(t *testing.T) {
		release := make(chan struct{})
		w := tu.NewFakeWidget()
		c := player.NewCoordinator(w.GatedBootstrap(release))
		defer c.Close()

		c.Start(tu.Background(t))
		c.LoadAndPlay(tu.Tracks(3), 0)
		c.LoadAndPlay(tu.Tracks(2), 1)

		if len(w.Calls()) != 0 {
			t.Fatalf("expected no commands before ready, got %v", w.Calls())
		}

		close(release)
		<-c.Ready()

		if n := w.Count("LoadPlaylist([vt0 vt1],1)"); n != 1 {
			t.Errorf("expected last pending load replayed once, got %d in %v", n, w.Calls())
		}
		if n := w.Count("LoadPlaylist([vt0 vt1 vt2],0)"); n != 0 {
			t.Errorf("superseded load must not be replayed, calls %v", w.Calls())
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("not ready commands are no-ops", func(t *testing.T) {
		w := tu.NewFakeWidget()
		c := player.NewCoordinator(w.Bootstrap())
		defer c.Close()

		c.LoadAndPlay(tu.Tracks(2), 0)
		c.TogglePlayback()
		c.Advance()
		c.Retreat()
		c.JumpTo(1)
		c.Seek(30)

		s := c.Session()
		if !s.IsPlaying {
			t.Error("toggle before ready must not change IsPlaying")
		}
		if s.Progress != 0 {
			t.Error("seek before ready must not change progress")
		}
		if len(w.Calls()) != 0 {
			t.Errorf("expected no widget calls, got %v", w.Calls())
		}
	})

	t.Run("TogglePlayback reads live state", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.TogglePlayback()
		if len(w.Calls()) != 2 {
			t.Fatalf("toggle without a track should do nothing, got %v", w.Calls())
		}

		c.LoadAndPlay(tu.Tracks(1), 0)
		w.Emit(player.StatePlaying)
		tu.WaitFor(t, waitTimeout, func() bool { return c.Session().IsPlaying }, "playing")

		c.TogglePlayback()
		if w.Count("PauseVideo") != 1 {
			t.Errorf("expected pause while playing, got %v", w.Calls())
		}

		w.Emit(player.StatePaused)
		tu.WaitFor(t, waitTimeout, func() bool { return !c.Session().IsPlaying }, "paused")

		c.TogglePlayback()
		if w.Count("PlayVideo") != 1 {
			t.Errorf("expected play while paused, got %v", w.Calls())
		}
	})

	t.Run("Advance and Retreat delegate", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.Advance()
		if w.Count("NextVideo") != 0 {
			t.Error("advance on empty queue must be a no-op")
		}

		c.LoadAndPlay(tu.Tracks(3), 0)
		c.Advance()
		c.Retreat()
		if w.Count("NextVideo") != 1 || w.Count("PreviousVideo") != 1 {
			t.Errorf("unexpected calls %v", w.Calls())
		}
		if c.Session().CurrentIndex != 0 {
			t.Error("index must only change from widget events")
		}
	})

	t.Run("JumpTo", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(3), 0)
		c.JumpTo(2)
		c.JumpTo(5)
		if w.Count("PlayVideoAt(2)") != 1 || w.Count("PlayVideoAt(5)") != 0 {
			t.Errorf("unexpected calls %v", w.Calls())
		}
	})

	t.Run("Seek is optimistic", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(1), 0)
		c.Seek(42)
		if c.Session().Progress != 42 || w.Count("SeekTo(42)") != 1 {
			t.Errorf("unexpected seek result %+v %v", c.Session(), w.Calls())
		}
	})

	t.Run("SetVolume clamps", func(t *testing.T) {
		c, w := readyCoordinator(t)
		tc := []struct {
			in      float64
			want    float64
			percent int
		}{
			{in: -0.3, want: 0, percent: 0},
			{in: 1.7, want: 1, percent: 100},
			{in: 0.555, want: 0.555, percent: 56},
			{in: math.NaN(), want: 0, percent: 0},
		}
		for _, tt := range tc {
			c.SetVolume(tt.in)
			if got := c.Session().Volume; got != tt.want {
				t.Errorf("SetVolume(%v): expected %v, got %v", tt.in, tt.want, got)
			}
			if w.Volume() != tt.percent {
				t.Errorf("SetVolume(%v): expected widget %d, got %d", tt.in, tt.percent, w.Volume())
			}
		}
	})

	t.Run("repeat mode is stored only", func(t *testing.T) {
		c, w := readyCoordinator(t)
		before := len(w.Calls())
		c.SetRepeatMode(models.RepeatOne)
		if c.Session().Repeat != models.RepeatOne || len(w.Calls()) != before {
			t.Error("repeat mode must be stored without widget calls")
		}
		if got := c.CycleRepeatMode(); got != models.RepeatOff {
			t.Errorf("expected cycle from one to off, got %v", got)
		}
	})
}

func TestStateChanges(t *testing.T) {
	t.Run("playing corrects index and starts track", func(t *testing.T) {
		var mu sync.Mutex
		var started []string
		c, w := readyCoordinator(t, player.WithOnTrackStart(func(tr models.Track) {
			mu.Lock()
			defer mu.Unlock()
			started = append(started, tr.ID)
		}))
		startedIDs := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), started...)
		}

		c.LoadAndPlay(tu.Tracks(3), 0)
		w.Emit(player.StatePlaying)
		tu.WaitFor(t, waitTimeout, func() bool { return len(startedIDs()) == 1 }, "first track start")

		w.Emit(player.StateBuffering)
		w.Emit(player.StatePlaying)

		w.SetIndex(2)
		w.Emit(player.StatePlaying)
		tu.WaitFor(t, waitTimeout, func() bool { return c.Session().CurrentIndex == 2 }, "index correction")

		tu.WaitFor(t, waitTimeout, func() bool { return len(startedIDs()) == 2 }, "second track start")
		ids := startedIDs()
		if ids[0] != "t0" || ids[1] != "t2" {
			t.Errorf("unexpected started tracks %v", ids)
		}
		if c.Session().Duration != 180 {
			t.Errorf("expected duration from widget, got %v", c.Session().Duration)
		}
	})

	t.Run("progress polls while playing", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(1), 0)
		w.SetTime(12.5)
		w.Emit(player.StatePlaying)

		tu.WaitFor(t, waitTimeout, func() bool { return c.Session().Progress == 12.5 }, "progress update")

		w.Emit(player.StatePaused)
		tu.WaitFor(t, waitTimeout, func() bool { return !c.Session().IsPlaying }, "paused")
		w.SetTime(99)
		time.Sleep(50 * time.Millisecond)
		if c.Session().Progress == 99 {
			t.Error("poller must stop when not playing")
		}
	})

	t.Run("repeat one replays ended track", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(3), 1)
		c.SetRepeatMode(models.RepeatOne)
		w.Emit(player.StatePlaying)
		tu.WaitFor(t, waitTimeout, func() bool { return c.Session().IsPlaying }, "playing")

		w.Emit(player.StateEnded)
		tu.WaitFor(t, waitTimeout, func() bool { return w.Count("PlayVideoAt(1)") == 1 }, "replay")

		if w.Count("SeekTo(0)") != 1 {
			t.Errorf("expected seek to start, got %v", w.Calls())
		}
		s := c.Session()
		if s.CurrentIndex != 1 || s.Progress != 0 {
			t.Errorf("expected index 1 and progress 0, got %+v", s)
		}
	})

	t.Run("repeat playlist wraps from last", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(3), 2)
		c.SetRepeatMode(models.RepeatPlaylist)
		w.Emit(player.StatePlaying)
		w.Emit(player.StateEnded)

		tu.WaitFor(t, waitTimeout, func() bool { return w.Count("PlayVideoAt(0)") == 1 }, "wrap to start")
	})

	t.Run("repeat off leaves the widget alone", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.LoadAndPlay(tu.Tracks(3), 2)
		w.Emit(player.StatePlaying)
		w.Emit(player.StateEnded)

		tu.WaitFor(t, waitTimeout, func() bool { return !c.Session().IsPlaying }, "ended")
		for _, call := range w.Calls() {
			if call == "PlayVideoAt(0)" || call == "PlayVideoAt(2)" {
				t.Errorf("unexpected call %s", call)
			}
		}
	})

	t.Run("events emitted inside a command do not deadlock", func(t *testing.T) {
		c, w := readyCoordinator(t)
		c.OnTrackStart(func(models.Track) { c.Session() })
		c.LoadAndPlay(tu.Tracks(2), 0)

		done := make(chan struct{})
		go func() {
			for range 50 {
				w.Emit(player.StatePlaying)
				c.TogglePlayback()
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(waitTimeout):
			t.Fatal("deadlock between emits and commands")
		}
	})

	t.Run("changes are signalled", func(t *testing.T) {
		c, _ := readyCoordinator(t)
		for len(c.Changes()) > 0 {
			<-c.Changes()
		}
		c.SetShuffleMode(true)
		select {
		case <-c.Changes():
		case <-time.After(waitTimeout):
			t.Fatal("expected change signal")
		}
	})
}

func TestSession(t *testing.T) {
	s := player.Session{Queue: tu.Tracks(3), CurrentIndex: 1}
	up := s.Upcoming()
	if len(up) != 1 || up[0].ID != "t2" {
		t.Errorf("unexpected upcoming %v", up)
	}

	empty := player.Session{CurrentIndex: -1}
	if _, ok := empty.CurrentTrack(); ok {
		t.Error("empty session has no current track")
	}
	if empty.Upcoming() != nil {
		t.Error("empty session has nothing upcoming")
	}
}
