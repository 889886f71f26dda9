package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/embed"
)

// DocumentSearchConfig configures the vector search adapter. The collection
// must have been populated by the external ingestion pipeline with the same
// embedding model named here.
type DocumentSearchConfig struct {
	BaseURL        string
	APIKey         string
	Collection     string
	TopK           int
	ScoreThreshold float64
}

// DocumentSearch retrieves ranked passages from a Qdrant collection.
type DocumentSearch struct {
	cfg      DocumentSearchConfig
	embedder embed.Embedder
	client   *http.Client
	logger   zerolog.Logger
}

func NewDocumentSearch(cfg DocumentSearchConfig, embedder embed.Embedder, logger zerolog.Logger) *DocumentSearch {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:6333"
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &DocumentSearch{
		cfg:      cfg,
		embedder: embedder,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With().Str("component", "document_search").Logger(),
	}
}

func (d *DocumentSearch) Spec() Spec {
	return Spec{
		Name: "document_search",
		Description: "Searches ingested documents by semantic similarity. " +
			"Use for questions answered by document content: articles, papers, policies, PDFs.",
	}
}

// --- Qdrant wire types ---

type qdrantSearchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	WithPayload    bool      `json:"with_payload"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
}

// qdrantStatus supports both `status: "ok"` and `status: {"error":"..."}`.
type qdrantStatus struct {
	State string
	Error string
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantSearchResponse struct {
	Status qdrantStatus `json:"status"`
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (d *DocumentSearch) Execute(ctx context.Context, req Request) Result {
	name := d.Spec().Name

	vector, err := d.embedder.Embed(ctx, req.Query)
	if err != nil {
		d.logger.Warn().Err(err).Msg("query embedding failed")
		return Fail(name, ConnectionError, fmt.Sprintf("embedding failed: %v", err), true)
	}

	body, _ := json.Marshal(qdrantSearchRequest{
		Vector:         vector,
		Limit:          d.cfg.TopK,
		WithPayload:    true,
		ScoreThreshold: d.cfg.ScoreThreshold,
	})

	url := fmt.Sprintf("%s/collections/%s/points/search", strings.TrimRight(d.cfg.BaseURL, "/"), d.cfg.Collection)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fail(name, ValidationError, err.Error(), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.cfg.APIKey != "" {
		httpReq.Header.Set("api-key", d.cfg.APIKey)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.logger.Warn().Err(err).Str("collection", d.cfg.Collection).Msg("vector backend unreachable")
		return Fail(name, ConnectionError, err.Error(), true)
	}
	defer resp.Body.Close()

	// A missing collection degrades to an empty result set, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return Succeed(name, nil, req.Query)
	}
	if resp.StatusCode != http.StatusOK {
		return Fail(name, ConnectionError, fmt.Sprintf("qdrant returned %s", resp.Status), true)
	}

	var decoded qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Fail(name, ConnectionError, fmt.Sprintf("decode response: %v", err), true)
	}
	if decoded.Status.State == "error" {
		return Fail(name, ConnectionError, decoded.Status.Error, true)
	}

	fragments := make([]Fragment, 0, len(decoded.Result))
	for _, hit := range decoded.Result {
		content := payloadString(hit.Payload, "content", "text", "page_content")
		if content == "" {
			continue
		}
		source := payloadString(hit.Payload, "source", "document", "file")
		if source == "" {
			source = d.cfg.Collection
		}
		fragments = append(fragments, Fragment{Source: source, Content: content, Score: hit.Score})
	}

	d.logger.Debug().Int("hits", len(fragments)).Str("collection", d.cfg.Collection).Msg("vector search complete")
	return Succeed(name, fragments, req.Query)
}

func payloadString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

var _ Tool = (*DocumentSearch)(nil)
