package player

import (
	"context"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// DefaultPollInterval is the progress polling cadence while playing.
const DefaultPollInterval = 250 * time.Millisecond

const defaultVolume = 0.8

type pendingLoad struct {
	ids   []string
	start int
}

// Option configures a [Coordinator].
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPollInterval sets the progress polling cadence. Non-positive values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithVolume sets the initial volume (0..1).
func WithVolume(v float64) Option {
	return func(c *Coordinator) { c.volume = clampVolume(v) }
}

// WithOnTrackStart registers fn to run whenever a different track starts playing.
func WithOnTrackStart(fn func(models.Track)) Option {
	return func(c *Coordinator) { c.onTrackStart = append(c.onTrackStart, fn) }
}

// Coordinator owns the playback session and drives a [Widget].
type Coordinator struct {
	bootstrap    Bootstrap
	logger       *log.Logger
	pollInterval time.Duration

	mu           sync.Mutex
	readiness    Readiness
	widget       Widget
	queue        []models.Track
	currentIndex int
	isPlaying    bool
	progress     float64
	duration     float64
	volume       float64
	shuffle      bool
	repeat       models.RepeatMode
	pending      *pendingLoad
	lastStarted  string
	pollGen      uint64
	pollStop     chan struct{}
	onTrackStart []func(models.Track)
	cancel       context.CancelFunc
	closed       bool

	events    *eventQueue
	changes   chan struct{}
	ready     chan struct{}
	done      chan struct{}
	startOnce sync.Once
	readyOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewCoordinator creates an Uninitialized coordinator. Call [Coordinator.Start] to create the widget.
func NewCoordinator(bootstrap Bootstrap, opts ...Option) *Coordinator {
	c := &Coordinator{
		bootstrap:    bootstrap,
		logger:       shared.NopLogger(),
		pollInterval: DefaultPollInterval,
		currentIndex: -1,
		volume:       defaultVolume,
		events:       newEventQueue(),
		changes:      make(chan struct{}, 1),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start moves to Initializing and runs the bootstrap in the background. Later calls do nothing.
func (c *Coordinator) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		bctx, cancel := context.WithCancel(ctx)
		c.cancel = cancel
		c.readiness = Initializing
		c.mu.Unlock()
		c.signal()

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			w, err := c.bootstrap(bctx, c.events.push)
			if err != nil {
				c.logger.Error("widget bootstrap failed", "error", err)
				return
			}
			c.markReady(w)
		}()
	})
}

// markReady performs the single transition to Ready.
func (c *Coordinator) markReady(w Widget) {
	c.readyOnce.Do(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			closeWidget(w)
			return
		}

		c.widget = w
		c.readiness = Ready
		w.SetVolume(widgetVolume(c.volume))
		w.SetShuffle(c.shuffle)
		if p := c.pending; p != nil {
			c.pending = nil
			c.logger.Debug("replaying pending load", "tracks", len(p.ids), "start", p.start)
			w.LoadPlaylist(p.ids, p.start)
			w.SetShuffle(c.shuffle)
		}
		c.mu.Unlock()

		c.logger.Info("widget ready")
		close(c.ready)

		c.wg.Add(1)
		go c.loop()
		c.signal()
	})
}

// Ready is closed when the widget becomes ready.
func (c *Coordinator) Ready() <-chan struct{} { return c.ready }

// Changes delivers a coalesced signal whenever the session changes.
func (c *Coordinator) Changes() <-chan struct{} { return c.changes }

// OnTrackStart registers fn to run whenever a different track starts playing.
func (c *Coordinator) OnTrackStart(fn func(models.Track)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTrackStart = append(c.onTrackStart, fn)
}

// Session returns a snapshot of the playback state.
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Session{
		Queue:        slices.Clone(c.queue),
		CurrentIndex: c.currentIndex,
		IsPlaying:    c.isPlaying,
		Progress:     c.progress,
		Duration:     c.duration,
		Volume:       c.volume,
		Shuffle:      c.shuffle,
		Repeat:       c.repeat,
		Readiness:    c.readiness,
	}
}

// Close stops the poller and the event loop and closes the widget when it is an [io.Closer].
func (c *Coordinator) Close() error {
	var w Widget
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.stopPollerLocked()
		if c.cancel != nil {
			c.cancel()
		}
		w = c.widget
		c.mu.Unlock()

		close(c.done)
		c.wg.Wait()
	})
	return closeWidget(w)
}

// LoadAndPlay replaces the queue with a copy of tracks and starts playback at startIndex.
// An out of range index starts at 0 and an empty list clears the session.
func (c *Coordinator) LoadAndPlay(tracks []models.Track, startIndex int) {
	c.mu.Lock()
	c.progress = 0
	c.duration = 0
	c.lastStarted = ""

	if len(tracks) == 0 {
		c.queue = nil
		c.currentIndex = -1
		c.isPlaying = false
		c.pending = nil
		c.stopPollerLocked()
		if w := c.readyWidgetLocked(); w != nil {
			w.PauseVideo()
		}
		c.mu.Unlock()
		c.signal()
		return
	}

	if startIndex < 0 || startIndex >= len(tracks) {
		startIndex = 0
	}
	c.queue = slices.Clone(tracks)
	c.currentIndex = startIndex
	c.isPlaying = true

	ids := models.VideoIDs(c.queue)
	if w := c.readyWidgetLocked(); w != nil {
		w.LoadPlaylist(ids, startIndex)
		w.SetShuffle(c.shuffle)
	} else {
		c.pending = &pendingLoad{ids: ids, start: startIndex}
	}
	c.mu.Unlock()
	c.signal()
}

// TogglePlayback pauses when the widget reports Playing and plays otherwise.
func (c *Coordinator) TogglePlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.readyWidgetLocked()
	if w == nil || c.currentIndex < 0 {
		return
	}
	if w.PlayerState() == StatePlaying {
		w.PauseVideo()
	} else {
		w.PlayVideo()
	}
}

// Advance skips to the next track.
func (c *Coordinator) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.readyWidgetLocked(); w != nil && len(c.queue) > 0 {
		w.NextVideo()
	}
}

// Retreat goes back to the previous track.
func (c *Coordinator) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.readyWidgetLocked(); w != nil && len(c.queue) > 0 {
		w.PreviousVideo()
	}
}

// JumpTo plays the queue entry at index.
func (c *Coordinator) JumpTo(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.readyWidgetLocked(); w != nil && index >= 0 && index < len(c.queue) {
		w.PlayVideoAt(index)
	}
}

// Seek moves playback to seconds and reports it as progress right away.
func (c *Coordinator) Seek(seconds float64) {
	c.mu.Lock()
	w := c.readyWidgetLocked()
	if w == nil {
		c.mu.Unlock()
		return
	}
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}
	w.SeekTo(seconds)
	c.progress = seconds
	c.mu.Unlock()
	c.signal()
}

// SetVolume stores v clamped to [0,1] and forwards it as a percentage when ready.
func (c *Coordinator) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = clampVolume(v)
	if w := c.readyWidgetLocked(); w != nil {
		w.SetVolume(widgetVolume(c.volume))
	}
	c.mu.Unlock()
	c.signal()
}

// SetShuffleMode stores shuffle and forwards it when ready.
func (c *Coordinator) SetShuffleMode(shuffle bool) {
	c.mu.Lock()
	c.shuffle = shuffle
	if w := c.readyWidgetLocked(); w != nil {
		w.SetShuffle(shuffle)
	}
	c.mu.Unlock()
	c.signal()
}

// SetRepeatMode stores the repeat policy. It is applied when a track ends.
func (c *Coordinator) SetRepeatMode(m models.RepeatMode) {
	c.mu.Lock()
	c.repeat = m
	c.mu.Unlock()
	c.signal()
}

// CycleRepeatMode advances off -> playlist -> one -> off and returns the new mode.
func (c *Coordinator) CycleRepeatMode() models.RepeatMode {
	c.mu.Lock()
	c.repeat = c.repeat.Next()
	m := c.repeat
	c.mu.Unlock()
	c.signal()
	return m
}

func (c *Coordinator) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.events.notify:
			for _, s := range c.events.drain() {
				c.handleState(s)
			}
		}
	}
}

// handleState applies a widget state change.
func (c *Coordinator) handleState(state PlayerState) {
	c.mu.Lock()
	w := c.readyWidgetLocked()
	if w == nil {
		c.mu.Unlock()
		return
	}

	var started *models.Track
	switch state {
	case StatePlaying:
		c.isPlaying = true
		c.duration = w.Duration()
		if idx := w.PlaylistIndex(); idx >= 0 && idx < len(c.queue) {
			c.currentIndex = idx
		}
		c.startPollerLocked()
		if c.currentIndex >= 0 && c.currentIndex < len(c.queue) {
			if t := c.queue[c.currentIndex]; t.ID != c.lastStarted {
				c.lastStarted = t.ID
				started = &t
			}
		}
	default:
		c.isPlaying = false
		c.stopPollerLocked()
		if state == StateEnded {
			c.reconcileEndedLocked(w)
		}
	}
	callbacks := slices.Clone(c.onTrackStart)
	c.mu.Unlock()

	c.logger.Debug("widget state", "state", state)
	c.signal()

	if started != nil {
		for _, fn := range callbacks {
			fn(*started)
		}
	}
}

// reconcileEndedLocked applies the repeat mode to the track that just ended.
func (c *Coordinator) reconcileEndedLocked(w Widget) {
	ended := c.currentIndex
	if ended < 0 || ended >= len(c.queue) {
		return
	}

	switch c.repeat {
	case models.RepeatOne:
		w.SeekTo(0)
		w.PlayVideoAt(ended)
		c.progress = 0
	case models.RepeatPlaylist:
		if ended == len(c.queue)-1 {
			w.PlayVideoAt(0)
		}
	}
}

// startPollerLocked replaces any running poller with a fresh one.
func (c *Coordinator) startPollerLocked() {
	c.stopPollerLocked()
	stop := make(chan struct{})
	c.pollStop = stop

	c.wg.Add(1)
	go c.poll(c.pollGen, stop)
}

func (c *Coordinator) stopPollerLocked() {
	c.pollGen++
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}

func (c *Coordinator) poll(gen uint64, stop <-chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			w := c.readyWidgetLocked()
			if gen != c.pollGen || w == nil {
				c.mu.Unlock()
				return
			}
			c.progress = w.CurrentTime()
			c.mu.Unlock()
			c.signal()
		}
	}
}

func (c *Coordinator) readyWidgetLocked() Widget {
	if c.closed || c.readiness != Ready {
		return nil
	}
	return c.widget
}

func (c *Coordinator) signal() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func widgetVolume(v float64) int {
	return int(math.Round(v * 100))
}

func closeWidget(w Widget) error {
	if closer, ok := w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
