// YouTube Data API v3 [Searcher] implementation
//
// Authenticates with a static API key. Every request is restricted to the Music category (id 10).
package services

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	musicCategoryID   = "10"
	defaultMaxResults = 20
	defaultRegion     = "US"
	youtubeName       = "youtube"
)

// YouTubeService implements [Searcher] over the YouTube Data API.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	maxResults int64
	region     string
	logger     *log.Logger

	mu  sync.Mutex
	svc *youtube.Service
}

// NewYouTubeService creates a YouTube service from the credentials and search configuration.
// The underlying client is built lazily so a missing key only fails when a call is made.
func NewYouTubeService(cfg shared.YouTubeConfig, maxResults int64, logger *log.Logger) *YouTubeService {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	if logger == nil {
		logger = shared.NopLogger()
	}

	return &YouTubeService{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		maxResults: maxResults,
		region:     region,
		logger:     logger,
	}
}

func (y *YouTubeService) service(ctx context.Context) (*youtube.Service, error) {
	if y.apiKey == "" {
		return nil, badRequest(youtubeName, "API key is not configured")
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	if y.svc != nil {
		return y.svc, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(y.apiKey)}
	if y.baseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(y.baseURL, "/")+"/"))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, &CatalogError{Kind: ErrBadRequest, Service: youtubeName, Err: err}
	}
	y.svc = svc
	return svc, nil
}

// Search returns music videos matching query.
//
// Calls search.list with part=snippet, type=video.
func (y *YouTubeService) Search(ctx context.Context, query string) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Track{}, nil
	}

	svc, err := y.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCategoryId(musicCategoryID).
		MaxResults(y.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, y.classify(err)
	}

	tracks := make([]models.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		t, err := models.NewTrack(item.Id.VideoId, item.Id.VideoId,
			html.UnescapeString(item.Snippet.Title),
			html.UnescapeString(item.Snippet.ChannelTitle),
			bestThumbnail(item.Snippet.Thumbnails))
		if err != nil {
			y.logger.Debug("skipping search item", "error", err)
			continue
		}
		tracks = append(tracks, t)
	}

	y.logger.Debug("search complete", "query", query, "results", len(tracks))
	return tracks, nil
}

// Trending returns the most popular music videos for region, falling back to the configured region.
//
// Calls videos.list with chart=mostPopular.
func (y *YouTubeService) Trending(ctx context.Context, region string) ([]models.Track, error) {
	if region = strings.TrimSpace(region); region == "" {
		region = y.region
	}

	svc, err := y.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(region).
		VideoCategoryId(musicCategoryID).
		MaxResults(y.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, y.classify(err)
	}

	tracks := make([]models.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		t, err := models.NewTrack(item.Id, item.Id,
			html.UnescapeString(item.Snippet.Title),
			html.UnescapeString(item.Snippet.ChannelTitle),
			bestThumbnail(item.Snippet.Thumbnails))
		if err != nil {
			y.logger.Debug("skipping trending item", "error", err)
			continue
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}

// classify converts a client error into a [*CatalogError].
func (y *YouTubeService) classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if ce, ok := decodeError(youtubeName, 0, err); ok {
			y.logger.Warn("youtube response could not be decoded", "err", err)
			return ce
		}
		return transportError(youtubeName, err)
	}

	reasons := make([]string, 0, len(gerr.Errors))
	for _, item := range gerr.Errors {
		reasons = append(reasons, item.Reason)
	}

	reason := gerr.Message
	if len(reasons) > 0 {
		reason = reasons[0]
	}

	ce := &CatalogError{
		Kind:    classifyStatus(gerr.Code, reasons...),
		Service: youtubeName,
		Status:  gerr.Code,
		Reason:  reason,
		Err:     err,
	}
	y.logger.Warn("youtube request failed", "status", gerr.Code, "reason", reason)
	return ce
}

// bestThumbnail picks high, then medium, then default.
func bestThumbnail(d *youtube.ThumbnailDetails) string {
	if d == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{d.High, d.Medium, d.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
