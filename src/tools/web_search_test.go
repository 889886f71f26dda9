package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestWebSearchReturnsRankedSnippets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("server could not decode request: %v", err)
		}
		if req.Query != "capital of France" {
			t.Fatalf("unexpected query forwarded: %q", req.Query)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Paris", "url": "https://en.wikipedia.org/wiki/Paris", "content": "Paris is the capital of France.", "score": 0.98},
			},
		})
	}))
	defer srv.Close()

	ws := NewWebSearch(WebSearchConfig{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	res := ws.Execute(context.Background(), Request{Query: "capital of France"})

	if !res.Success {
		t.Fatalf("expected success, got failure: %+v", res.Failure)
	}
	if len(res.Fragments) != 1 || res.Fragments[0].Source != "https://en.wikipedia.org/wiki/Paris" {
		t.Fatalf("unexpected fragments: %+v", res.Fragments)
	}
	if res.Tool != "web_search" {
		t.Fatalf("result not tagged with tool name: %q", res.Tool)
	}
}

func TestWebSearchUnreachableBackendIsConnectionError(t *testing.T) {
	ws := NewWebSearch(WebSearchConfig{BaseURL: "http://127.0.0.1:1", APIKey: "test-key"}, zerolog.Nop())
	res := ws.Execute(context.Background(), Request{Query: "anything"})

	if res.Success {
		t.Fatalf("expected failure for unreachable backend")
	}
	if res.Failure.Kind != ConnectionError || !res.Failure.Retryable {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
}

func TestWebSearchMissingKeyIsValidationError(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	ws := NewWebSearch(WebSearchConfig{}, zerolog.Nop())
	res := ws.Execute(context.Background(), Request{Query: "anything"})

	if res.Success || res.Failure.Kind != ValidationError {
		t.Fatalf("expected ValidationError, got %+v", res)
	}
}
