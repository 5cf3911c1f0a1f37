// Gemini generateContent [Generator] implementation
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/shared"
	"google.golang.org/genai"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/"
	defaultGeminiModel   = "gemini-2.5-flash"
	geminiAPIVersion     = "v1beta"
	defaultSongCount     = 10
	geminiName           = "gemini"
)

// suggestionSchema constrains the model output to a playlist name and a list of songs.
var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"playlistName": {Type: genai.TypeString},
		"songs": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":  {Type: genai.TypeString},
					"artist": {Type: genai.TypeString},
				},
				Required: []string{"title", "artist"},
			},
		},
	},
	Required: []string{"playlistName", "songs"},
}

// GeminiService implements [Generator] with the genai client.
type GeminiService struct {
	apiKey     string
	baseURL    string
	model      string
	songCount  int
	httpClient *http.Client
	logger     *log.Logger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiService creates a Gemini generator from the credentials configuration.
func NewGeminiService(cfg shared.GeminiConfig, logger *log.Logger) *GeminiService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = shared.NopLogger()
	}

	return &GeminiService{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		songCount:  defaultSongCount,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (g *GeminiService) Configured() bool { return g.apiKey != "" }

// genaiClient builds the client on first use.
func (g *GeminiService) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    g.baseURL,
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// buildPrompt wraps the user's description in the recommender instruction.
func (g *GeminiService) buildPrompt(description string) string {
	return fmt.Sprintf(
		"You are a world-class music recommender. Based on the following description, create a playlist of %d songs. Description: \"%s\"",
		g.songCount, description,
	)
}

// Suggest asks the model for a playlist matching prompt.
func (g *GeminiService) Suggest(ctx context.Context, prompt string) (*Suggestion, error) {
	if !g.Configured() {
		return nil, badRequest(geminiName, "API key is not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, badRequest(geminiName, "prompt is empty")
	}

	client, err := g.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(g.buildPrompt(prompt)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema,
	})
	if err != nil {
		return nil, g.classify(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &CatalogError{Kind: ErrMalformed, Service: geminiName, Status: http.StatusOK, Reason: "no candidates"}
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, &CatalogError{Kind: ErrMalformed, Service: geminiName, Status: http.StatusOK, Err: err}
	}

	g.logger.Debug("generated suggestion", "name", suggestion.Name, "songs", len(suggestion.Songs))
	return &suggestion, nil
}

// classify maps a genai error onto a [CatalogError].
func (g *GeminiService) classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		if ce, ok := decodeError(geminiName, http.StatusOK, err); ok {
			g.logger.Warn("gemini response could not be decoded", "err", err)
			return ce
		}
		return transportError(geminiName, err)
	}

	reason := apiErr.Status
	if reason == "" {
		reason = apiErr.Message
	}
	g.logger.Warn("gemini request failed", "status", apiErr.Code, "reason", reason)
	return &CatalogError{
		Kind:    classifyStatus(apiErr.Code, apiErr.Status),
		Service: geminiName,
		Status:  apiErr.Code,
		Reason:  reason,
		Err:     err,
	}
}
