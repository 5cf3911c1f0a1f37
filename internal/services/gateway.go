package services

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultConcurrency = 5
	defaultRateLimit   = 10.0
)

// Gateway implements [Catalog] by composing a [Searcher] and a [Generator].
type Gateway struct {
	searcher    Searcher
	generator   Generator
	concurrency int
	limiter     *rate.Limiter
	logger      *log.Logger
}

// GatewayOption configures a [Gateway].
type GatewayOption func(*Gateway)

// WithConcurrency bounds the number of concurrent lookups while resolving a generated playlist.
func WithConcurrency(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithRateLimit caps lookups per second. Non-positive values disable limiting.
func WithRateLimit(perSecond float64) GatewayOption {
	return func(g *Gateway) {
		if perSecond <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a catalog over searcher and generator.
func NewGateway(searcher Searcher, generator Generator, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		searcher:    searcher,
		generator:   generator,
		concurrency: defaultConcurrency,
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), int(defaultRateLimit)),
		logger:      shared.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGatewayFromConfig wires the YouTube and Gemini services from cfg.
func NewGatewayFromConfig(cfg *shared.Config, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = shared.NopLogger()
	}
	yt := NewYouTubeService(cfg.Credentials.YouTube, cfg.Search.MaxResults, shared.WithLogger(logger, "service", youtubeName))
	gem := NewGeminiService(cfg.Credentials.Gemini, shared.WithLogger(logger, "service", geminiName))
	return NewGateway(yt, gem,
		WithConcurrency(cfg.Search.Concurrency),
		WithRateLimit(cfg.Search.RateLimit),
		WithLogger(logger),
	)
}

// Search delegates to the searcher. Empty queries never reach it.
func (g *Gateway) Search(ctx context.Context, query string) ([]models.Track, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Track{}, nil
	}
	return g.searcher.Search(ctx, query)
}

// Trending delegates to the searcher.
func (g *Gateway) Trending(ctx context.Context, region string) ([]models.Track, error) {
	return g.searcher.Trending(ctx, region)
}

// GeneratePlaylist asks the generator for suggestions and resolves each to the first search match.
//
// Lookups run concurrently. Songs with no match or a failed lookup are dropped, the generator's
// order is kept and repeated ids collapse to their first position. Only a generator failure or
// cancellation of ctx fails the call.
func (g *Gateway) GeneratePlaylist(ctx context.Context, prompt string) (*GeneratedPlaylist, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, badRequest(geminiName, "prompt is empty")
	}

	suggestion, err := g.generator.Suggest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	resolved := make([]*models.Track, len(suggestion.Songs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, song := range suggestion.Songs {
		eg.Go(func() error {
			if err := g.limiter.Wait(egCtx); err != nil {
				return err
			}

			results, err := g.Search(egCtx, song.Query())
			if err != nil {
				g.logger.Debug("lookup failed", "song", song.Query(), "error", err)
				return nil
			}
			if len(results) == 0 {
				g.logger.Debug("no match", "song", song.Query())
				return nil
			}
			resolved[i] = &results[0]
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, transportError(youtubeName, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, transportError(youtubeName, err)
	}

	tracks := make([]models.Track, 0, len(resolved))
	seen := make(map[string]bool, len(resolved))
	for _, t := range resolved {
		if t == nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tracks = append(tracks, *t)
	}

	g.logger.Info("generated playlist", "name", suggestion.Name, "suggested", len(suggestion.Songs), "resolved", len(tracks))
	return &GeneratedPlaylist{Name: suggestion.Name, Tracks: tracks}, nil
}
