package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// DefaultDebounce is the delay between the last keystroke and the search request.
const DefaultDebounce = 500 * time.Millisecond

// SearchResult is the outcome of one debounced query.
type SearchResult struct {
	Seq    uint64
	Query  string
	Tracks []models.Track
	Err    error
}

// SearchSession debounces queries against a [services.Searcher] and discards stale responses.
type SearchSession struct {
	searcher services.Searcher
	debounce time.Duration
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	closed  bool
	results chan SearchResult
}

// NewSearchSession creates a session. A non-positive debounce uses [DefaultDebounce].
func NewSearchSession(searcher services.Searcher, debounce time.Duration, logger *log.Logger) *SearchSession {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = shared.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSession{
		searcher: searcher,
		debounce: debounce,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan SearchResult, 1),
	}
}

// Results delivers the latest result. An undelivered older result is replaced by a newer one.
// The channel is closed by [SearchSession.Close].
func (s *SearchSession) Results() <-chan SearchResult {
	return s.results
}

// Submit schedules query and returns its sequence number.
//
// A blank query cancels the pending search and resolves immediately to an empty result.
func (s *SearchSession) Submit(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.seq
	}

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	seq := s.seq

	if strings.TrimSpace(query) == "" {
		s.deliverLocked(SearchResult{Seq: seq, Query: query, Tracks: []models.Track{}})
		return seq
	}

	s.timer = time.AfterFunc(s.debounce, func() { s.run(seq, query) })
	return seq
}

// Latest returns the sequence number of the most recent submission.
func (s *SearchSession) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *SearchSession) run(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	tracks, err := s.searcher.Search(s.ctx, query)
	if err != nil {
		s.logger.Warn("search failed", "query", query, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		s.logger.Debug("dropping stale search result", "query", query, "seq", seq, "latest", s.seq)
		return
	}
	if tracks == nil && err == nil {
		tracks = []models.Track{}
	}
	s.deliverLocked(SearchResult{Seq: seq, Query: query, Tracks: tracks, Err: err})
}

func (s *SearchSession) deliverLocked(r SearchResult) {
	select {
	case <-s.results:
	default:
	}
	s.results <- r
}

// Close stops the pending timer, cancels in-flight requests and closes [SearchSession.Results].
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	close(s.results)
}
