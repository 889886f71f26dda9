package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// WebSearchConfig configures the Tavily-backed web search adapter.
type WebSearchConfig struct {
	BaseURL        string
	APIKey         string
	SearchDepth    string // "basic" or "advanced"
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
}

// WebSearch retrieves ranked snippets from the open web.
type WebSearch struct {
	cfg    WebSearchConfig
	client *http.Client
	logger zerolog.Logger
}

func NewWebSearch(cfg WebSearchConfig, logger zerolog.Logger) *WebSearch {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = "basic"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &WebSearch{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With().Str("component", "web_search").Logger(),
	}
}

func (w *WebSearch) Spec() Spec {
	return Spec{
		Name: "web_search",
		Description: "Searches the public web for current information. " +
			"Use for general knowledge, recent events and anything not covered by internal sources.",
	}
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (w *WebSearch) Execute(ctx context.Context, req Request) Result {
	name := w.Spec().Name

	if w.cfg.APIKey == "" {
		return Fail(name, ValidationError, "web search API key is not configured", false)
	}

	body, _ := json.Marshal(tavilyRequest{
		APIKey:         w.cfg.APIKey,
		Query:          req.Query,
		SearchDepth:    w.cfg.SearchDepth,
		MaxResults:     w.cfg.MaxResults,
		IncludeDomains: w.cfg.IncludeDomains,
		ExcludeDomains: w.cfg.ExcludeDomains,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return Fail(name, ValidationError, err.Error(), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(httpReq)
	if err != nil {
		w.logger.Warn().Err(err).Msg("search backend unreachable")
		return Fail(name, ConnectionError, err.Error(), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fail(name, ConnectionError, fmt.Sprintf("search API returned %s", resp.Status), true)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Fail(name, ConnectionError, fmt.Sprintf("decode response: %v", err), true)
	}

	fragments := make([]Fragment, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.Content == "" {
			continue
		}
		fragments = append(fragments, Fragment{Source: r.URL, Content: r.Content, Score: r.Score})
	}

	w.logger.Debug().Int("hits", len(fragments)).Msg("web search complete")
	return Succeed(name, fragments, req.Query)
}

var _ Tool = (*WebSearch)(nil)
