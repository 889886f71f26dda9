package models

import (
	"context"
	"errors"
	"testing"
)

type stubOracle struct {
	response string
	err      error
}

func (s *stubOracle) Complete(context.Context, string) (string, error) {
	return s.response, s.err
}

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here you go:\n```json\n{\"a\": 1}\n```\nDone."
	if got := ExtractJSON(raw); got != `{"a": 1}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONUnlabelledFence(t *testing.T) {
	raw := "```\n{\"a\": 2}\n```"
	if got := ExtractJSON(raw); got != `{"a": 2}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONBareBraces(t *testing.T) {
	raw := `The answer is {"a": {"b": 3}} as requested.`
	if got := ExtractJSON(raw); got != `{"a": {"b": 3}}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestCompleteJSONDecodes(t *testing.T) {
	oracle := &stubOracle{response: "```json\n{\"selected\": [\"web\"]}\n```"}
	var out struct {
		Selected []string `json:"selected"`
	}
	if err := CompleteJSON(context.Background(), oracle, "pick", &out); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if len(out.Selected) != 1 || out.Selected[0] != "web" {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestCompleteJSONMapsProviderFailure(t *testing.T) {
	oracle := &stubOracle{err: errors.New("boom")}
	var out map[string]any
	err := CompleteJSON(context.Background(), oracle, "pick", &out)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCompleteJSONMapsGarbage(t *testing.T) {
	oracle := &stubOracle{response: "I refuse to answer in JSON."}
	var out map[string]any
	err := CompleteJSON(context.Background(), oracle, "pick", &out)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDummyOracleEchoesLastLine(t *testing.T) {
	oracle := NewDummyOracle("")
	got, err := oracle.Complete(context.Background(), "first\n\nlast line\n")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Dummy response: last line" {
		t.Fatalf("unexpected dummy output: %q", got)
	}
}
