package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/nextmusic/internal/player"
)

// FakeWidget is a [player.Widget] that records commands and emits states on demand.
type FakeWidget struct {
	mu       sync.Mutex
	calls    []string
	state    player.PlayerState
	index    int
	time     float64
	duration float64
	volume   int
	shuffle  bool
	loaded   []string
	emit     func(player.PlayerState)
	closed   bool
}

func NewFakeWidget() *FakeWidget {
	return &FakeWidget{state: player.StateUnstarted, index: -1, duration: 180}
}

// Bootstrap returns a bootstrap that resolves immediately with f.
func (f *FakeWidget) Bootstrap() player.Bootstrap {
	return f.GatedBootstrap(nil)
}

// GatedBootstrap resolves with f once release is closed. A nil channel resolves immediately.
func (f *FakeWidget) GatedBootstrap(release <-chan struct{}) player.Bootstrap {
	return func(ctx context.Context, emit func(player.PlayerState)) (player.Widget, error) {
		f.mu.Lock()
		f.emit = emit
		f.mu.Unlock()

		if release != nil {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return f, nil
	}
}

// FailingBootstrap always fails.
func FailingBootstrap(err error) player.Bootstrap {
	return func(ctx context.Context, emit func(player.PlayerState)) (player.Widget, error) {
		return nil, err
	}
}

// Emit sets the state and reports it through the bootstrap's emit callback.
func (f *FakeWidget) Emit(s player.PlayerState) {
	f.mu.Lock()
	f.state = s
	emit := f.emit
	f.mu.Unlock()
	if emit != nil {
		emit(s)
	}
}

// SetIndex sets the value returned by PlaylistIndex.
func (f *FakeWidget) SetIndex(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = i
}

// SetTime sets the value returned by CurrentTime.
func (f *FakeWidget) SetTime(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.time = seconds
}

// Calls returns a copy of the recorded commands.
func (f *FakeWidget) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many recorded commands equal call.
func (f *FakeWidget) Count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Volume returns the last volume set.
func (f *FakeWidget) Volume() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// Closed reports whether Close was called.
func (f *FakeWidget) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeWidget) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *FakeWidget) LoadPlaylist(ids []string, start int) {
	f.mu.Lock()
	f.loaded = append([]string(nil), ids...)
	f.index = start
	f.mu.Unlock()
	f.record("LoadPlaylist(%v,%d)", ids, start)
}

func (f *FakeWidget) PlayVideo()     { f.record("PlayVideo") }
func (f *FakeWidget) PauseVideo()    { f.record("PauseVideo") }
func (f *FakeWidget) NextVideo()     { f.record("NextVideo") }
func (f *FakeWidget) PreviousVideo() { f.record("PreviousVideo") }

func (f *FakeWidget) PlayVideoAt(i int) {
	f.mu.Lock()
	f.index = i
	f.mu.Unlock()
	f.record("PlayVideoAt(%d)", i)
}

func (f *FakeWidget) SeekTo(seconds float64) {
	f.mu.Lock()
	f.time = seconds
	f.mu.Unlock()
	f.record("SeekTo(%g)", seconds)
}

func (f *FakeWidget) SetVolume(percent int) {
	f.mu.Lock()
	f.volume = percent
	f.mu.Unlock()
	f.record("SetVolume(%d)", percent)
}

func (f *FakeWidget) SetShuffle(shuffle bool) {
	f.mu.Lock()
	f.shuffle = shuffle
	f.mu.Unlock()
	f.record("SetShuffle(%t)", shuffle)
}

func (f *FakeWidget) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time
}

func (f *FakeWidget) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *FakeWidget) PlayerState() player.PlayerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FakeWidget) PlaylistIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

func (f *FakeWidget) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
