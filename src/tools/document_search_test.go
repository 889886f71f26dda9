package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/embed"
)

func TestDocumentSearchReturnsRankedPassages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/handbook/points/search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"result": []map[string]any{
				{"score": 0.91, "payload": map[string]any{"content": "Tuition is due in September.", "source": "handbook.pdf"}},
				{"score": 0.84, "payload": map[string]any{"page_content": "Late fees apply after October."}},
			},
		})
	}))
	defer srv.Close()

	ds := NewDocumentSearch(DocumentSearchConfig{BaseURL: srv.URL, Collection: "handbook"}, embed.DummyEmbedder{}, zerolog.Nop())
	res := ds.Execute(context.Background(), Request{Query: "when is tuition due"})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Failure)
	}
	if len(res.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(res.Fragments))
	}
	if res.Fragments[0].Source != "handbook.pdf" || res.Fragments[0].Score != 0.91 {
		t.Fatalf("unexpected first fragment: %+v", res.Fragments[0])
	}
	// Passage without an explicit source falls back to the collection name.
	if res.Fragments[1].Source != "handbook" {
		t.Fatalf("expected collection fallback source, got %q", res.Fragments[1].Source)
	}
}

func TestDocumentSearchMissingCollectionIsEmptySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ds := NewDocumentSearch(DocumentSearchConfig{BaseURL: srv.URL, Collection: "ghost"}, embed.DummyEmbedder{}, zerolog.Nop())
	res := ds.Execute(context.Background(), Request{Query: "anything"})

	if !res.Success {
		t.Fatalf("absent collection must degrade to empty success, got %+v", res.Failure)
	}
	if len(res.Fragments) != 0 {
		t.Fatalf("expected no fragments, got %d", len(res.Fragments))
	}
}

func TestDocumentSearchUnreachableBackendIsConnectionError(t *testing.T) {
	ds := NewDocumentSearch(DocumentSearchConfig{BaseURL: "http://127.0.0.1:1", Collection: "c"}, embed.DummyEmbedder{}, zerolog.Nop())
	res := ds.Execute(context.Background(), Request{Query: "anything"})

	if res.Success || res.Failure.Kind != ConnectionError {
		t.Fatalf("expected ConnectionError, got %+v", res)
	}
}
