// Package mpv drives an mpv process over its JSON IPC socket as a [player.Widget].
//
// Commands are written without waiting for a reply. Getters wait up to [replyTimeout] for the
// matching request_id. Playback events and observed properties are translated into player states:
//
//	start-file                -> buffering
//	playback-restart          -> playing, or paused when the pause property is set
//	property-change pause     -> playing / paused while a file is loaded
//	end-file reason=eof       -> ended
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/shared"
)

const (
	replyTimeout   = time.Second
	dialInterval   = 50 * time.Millisecond
	startupTimeout = 10 * time.Second

	observePause = 1
	observeIdle  = 2
)

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("mpv: connection closed")

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type message struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
}

var _ player.Widget = (*Widget)(nil)

type reply struct {
	data json.RawMessage
	err  error
}

// Widget is a [player.Widget] backed by mpv.
type Widget struct {
	conn   net.Conn
	emit   func(player.PlayerState)
	logger *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan reply
	state   player.PlayerState
	paused  bool
	loaded  bool
	closed  bool

	loadedIDs []string
	shuffled  bool

	proc   *exec.Cmd
	socket string
	done   chan struct{}
}

// Bootstrap returns a [player.Bootstrap] that attaches to cfg.SocketPath when something is already
// listening there and otherwise spawns mpv.
func Bootstrap(cfg shared.PlayerConfig, logger *log.Logger) player.Bootstrap {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return func(ctx context.Context, emit func(player.PlayerState)) (player.Widget, error) {
		if cfg.SocketPath != "" {
			if w, err := Dial(ctx, cfg.SocketPath, emit, logger); err == nil {
				logger.Info("attached to mpv", "socket", cfg.SocketPath)
				return w, nil
			}
		}
		w, err := Spawn(ctx, cfg, emit, logger)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

// Spawn starts an idle, audio-only mpv and connects to its IPC socket.
func Spawn(ctx context.Context, cfg shared.PlayerConfig, emit func(player.PlayerState), logger *log.Logger) (*Widget, error) {
	bin := cfg.MPVPath
	if bin == "" {
		bin = "mpv"
	}
	socket := cfg.SocketPath
	if socket == "" {
		socket = filepath.Join(os.TempDir(), "nextmusic-"+shared.GenerateID()+".sock")
	}

	cmd := exec.Command(bin, "--idle=yes", "--no-video", "--no-terminal", "--input-ipc-server="+socket)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start mpv: %v", shared.ErrServiceUnavailable, err)
	}
	logger.Info("spawned mpv", "pid", cmd.Process.Pid, "socket", socket)

	dctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	w, err := waitAndDial(dctx, socket, emit, logger)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}
	w.proc = cmd
	w.socket = socket
	return w, nil
}

func waitAndDial(ctx context.Context, socket string, emit func(player.PlayerState), logger *log.Logger) (*Widget, error) {
	ticker := time.NewTicker(dialInterval)
	defer ticker.Stop()
	for {
		w, err := Dial(ctx, socket, emit, logger)
		if err == nil {
			return w, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: mpv socket %s: %v", shared.ErrServiceUnavailable, socket, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Dial connects to an mpv IPC socket and subscribes to the properties the widget tracks.
func Dial(ctx context.Context, socket string, emit func(player.PlayerState), logger *log.Logger) (*Widget, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(player.PlayerState) {}
	}
	if logger == nil {
		logger = shared.NopLogger()
	}

	w := &Widget{
		conn:    conn,
		emit:    emit,
		logger:  logger,
		pending: make(map[int64]chan reply),
		state:   player.StateUnstarted,
		done:    make(chan struct{}),
	}
	go w.readLoop()

	w.send("observe_property", observePause, "pause")
	w.send("observe_property", observeIdle, "idle-active")
	return w, nil
}

// LoadPlaylist replaces the mpv playlist and starts at startIndex.
func (w *Widget) LoadPlaylist(videoIDs []string, startIndex int) {
	w.mu.Lock()
	w.loadedIDs = slices.Clone(videoIDs)
	w.shuffled = false
	w.mu.Unlock()

	for i, id := range videoIDs {
		mode := "append"
		if i == 0 {
			mode = "replace"
		}
		w.send("loadfile", shared.WatchURL(id), mode)
	}
	if startIndex > 0 {
		w.send("playlist-play-index", startIndex)
	}
	w.send("set_property", "pause", false)
}

func (w *Widget) PlayVideo()     { w.send("set_property", "pause", false) }
func (w *Widget) PauseVideo()    { w.send("set_property", "pause", true) }
func (w *Widget) NextVideo()     { w.send("playlist-next") }
func (w *Widget) PreviousVideo() { w.send("playlist-prev") }

// PlayVideoAt plays the entry loaded at index, looking up where shuffle moved it.
func (w *Widget) PlayVideoAt(index int) {
	w.send("playlist-play-index", w.playlistPos(index))
	w.send("set_property", "pause", false)
}

func (w *Widget) SeekTo(seconds float64) { w.send("seek", seconds, "absolute") }

func (w *Widget) SetVolume(percent int) { w.send("set_property", "volume", percent) }

func (w *Widget) SetShuffle(shuffle bool) {
	w.mu.Lock()
	w.shuffled = shuffle
	w.mu.Unlock()

	if shuffle {
		w.send("playlist-shuffle")
	} else {
		w.send("playlist-unshuffle")
	}
}

// CurrentTime returns time-pos, or 0 when nothing is loaded.
func (w *Widget) CurrentTime() float64 {
	var v float64
	w.get("time-pos", &v)
	return v
}

// Duration returns the duration of the current file, or 0.
func (w *Widget) Duration() float64 {
	var v float64
	w.get("duration", &v)
	return v
}

// PlaylistIndex returns the load-order index of the current file, or -1.
//
// The current path is matched against the loaded ids. playlist-pos is only trusted when the
// playlist has not been shuffled.
func (w *Widget) PlaylistIndex() int {
	var path string
	if err := w.get("path", &path); err == nil {
		if i := w.loadIndex(path); i >= 0 {
			return i
		}
	}

	w.mu.Lock()
	shuffled := w.shuffled
	w.mu.Unlock()
	if shuffled {
		return -1
	}

	v := -1
	if err := w.get("playlist-pos", &v); err != nil {
		return -1
	}
	return v
}

// loadIndex returns the position of the loaded entry whose watch URL is path.
func (w *Widget) loadIndex(path string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, id := range w.loadedIDs {
		if shared.WatchURL(id) == path {
			return i
		}
	}
	return -1
}

// playlistPos maps a load-order index to its current mpv playlist position.
func (w *Widget) playlistPos(index int) int {
	w.mu.Lock()
	shuffled := w.shuffled
	var target string
	if index >= 0 && index < len(w.loadedIDs) {
		target = shared.WatchURL(w.loadedIDs[index])
	}
	w.mu.Unlock()

	if !shuffled || target == "" {
		return index
	}

	var entries []struct {
		Filename string `json:"filename"`
	}
	if err := w.get("playlist", &entries); err != nil {
		w.logger.Debug("mpv playlist unavailable", "error", err)
		return index
	}
	for pos, e := range entries {
		if e.Filename == target {
			return pos
		}
	}
	return index
}

// PlayerState returns the last state derived from mpv events.
func (w *Widget) PlayerState() player.PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Close disconnects and, when the process was spawned by this widget, asks mpv to quit.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if w.proc != nil {
		w.send("quit")
	}

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	err := w.conn.Close()
	<-w.done

	if w.proc != nil {
		done := make(chan error, 1)
		go func() { done <- w.proc.Wait() }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			w.proc.Process.Kill()
			<-done
		}
		os.Remove(w.socket)
	}
	return err
}

// send writes a command without waiting for the reply.
func (w *Widget) send(args ...any) {
	if _, err := w.write(args, nil); err != nil {
		w.logger.Debug("mpv command failed", "command", args[0], "error", err)
	}
}

// get reads a property into v.
func (w *Widget) get(property string, v any) error {
	ch := make(chan reply, 1)
	id, err := w.write([]any{"get_property", property}, ch)
	if err != nil {
		return err
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		return json.Unmarshal(r.data, v)
	case <-time.After(replyTimeout):
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return fmt.Errorf("mpv: timed out reading %s", property)
	case <-w.done:
		return ErrClosed
	}
}

func (w *Widget) write(command []any, ch chan reply) (int64, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, ErrClosed
	}
	w.nextID++
	id := w.nextID
	if ch != nil {
		w.pending[id] = ch
	}
	w.mu.Unlock()

	data, err := json.Marshal(request{Command: command, RequestID: id})
	if err != nil {
		return id, err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if _, err := w.conn.Write(append(data, '\n')); err != nil {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return id, err
	}
	return id, nil
}

func (w *Widget) readLoop() {
	defer close(w.done)

	scanner := bufio.NewScanner(w.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			w.logger.Debug("skipping mpv message", "error", err)
			continue
		}

		if msg.Event != "" {
			w.handleEvent(msg)
			continue
		}
		if msg.RequestID != nil {
			w.deliver(*msg.RequestID, msg)
		}
	}
}

func (w *Widget) deliver(id int64, msg message) {
	w.mu.Lock()
	ch, ok := w.pending[id]
	delete(w.pending, id)
	w.mu.Unlock()
	if !ok {
		return
	}

	var r reply
	if msg.Error != "" && msg.Error != "success" {
		r.err = fmt.Errorf("mpv: %s", msg.Error)
	} else {
		r.data = msg.Data
	}
	ch <- r
}

func (w *Widget) handleEvent(msg message) {
	switch msg.Event {
	case "start-file":
		w.mu.Lock()
		w.loaded = true
		w.mu.Unlock()
		w.setState(player.StateBuffering)
	case "playback-restart":
		w.mu.Lock()
		paused := w.paused
		w.mu.Unlock()
		if paused {
			w.setState(player.StatePaused)
		} else {
			w.setState(player.StatePlaying)
		}
	case "end-file":
		w.mu.Lock()
		w.loaded = false
		w.mu.Unlock()
		if msg.Reason == "eof" {
			w.setState(player.StateEnded)
		}
	case "property-change":
		w.handleProperty(msg)
	}
}

func (w *Widget) handleProperty(msg message) {
	switch msg.Name {
	case "pause":
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return
		}
		w.mu.Lock()
		w.paused = paused
		loaded := w.loaded
		w.mu.Unlock()
		if !loaded {
			return
		}
		if paused {
			w.setState(player.StatePaused)
		} else {
			w.setState(player.StatePlaying)
		}
	case "idle-active":
		var idle bool
		if err := json.Unmarshal(msg.Data, &idle); err != nil || !idle {
			return
		}
		w.mu.Lock()
		w.loaded = false
		w.mu.Unlock()
	}
}

func (w *Widget) setState(s player.PlayerState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.emit(s)
}
