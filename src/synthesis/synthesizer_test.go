package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/models"
	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

type capturingOracle struct {
	response   string
	err        error
	lastPrompt string
}

func (c *capturingOracle) Complete(_ context.Context, prompt string) (string, error) {
	c.lastPrompt = prompt
	return c.response, c.err
}

func TestSynthesizeIncludesAttributedSources(t *testing.T) {
	oracle := &capturingOracle{response: "Paris is the capital of France (source: wikipedia)."}
	syn := &Synthesizer{Oracle: oracle, Logger: zerolog.Nop()}

	answer, err := syn.Synthesize(context.Background(), Input{
		SystemPrompt: "You are a helpful assistant.",
		Query:        "capital of France",
		Results: []tools.Result{
			tools.Succeed("web_search", []tools.Fragment{{
				Source:  "https://en.wikipedia.org/wiki/Paris",
				Content: "Paris is the capital of France.",
			}}, "capital of France"),
		},
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected non-empty answer")
	}
	if !strings.Contains(oracle.lastPrompt, "https://en.wikipedia.org/wiki/Paris") {
		t.Fatalf("prompt missing source attribution:\n%s", oracle.lastPrompt)
	}
	if !strings.Contains(oracle.lastPrompt, "same language") {
		t.Fatalf("prompt missing language mirroring instruction")
	}
}

func TestFailedToolsAreRenderedAsUnavailable(t *testing.T) {
	oracle := &capturingOracle{response: "I could not reach some sources."}
	syn := &Synthesizer{Oracle: oracle, Logger: zerolog.Nop()}

	_, err := syn.Synthesize(context.Background(), Input{
		SystemPrompt: "sys",
		Query:        "q",
		Results: []tools.Result{
			tools.Fail("document_search", tools.ConnectionError, "backend down", true),
			tools.Succeed("web_search", []tools.Fragment{{Source: "u", Content: "c"}}, ""),
		},
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !strings.Contains(oracle.lastPrompt, "This source was unavailable") {
		t.Fatalf("failed tool silently omitted from prompt:\n%s", oracle.lastPrompt)
	}
}

func TestAllFailedResultsStillProduceAnswer(t *testing.T) {
	oracle := &capturingOracle{response: "All my information sources are currently unavailable."}
	syn := &Synthesizer{Oracle: oracle, Logger: zerolog.Nop()}

	answer, err := syn.Synthesize(context.Background(), Input{
		SystemPrompt: "sys",
		Query:        "q",
		Results: []tools.Result{
			tools.Fail("a", tools.Timeout, "t", true),
			tools.Fail("b", tools.ConnectionError, "c", true),
		},
	})
	if err != nil {
		t.Fatalf("all-failure input must not be cycle-fatal: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected non-empty answer for all-failure input")
	}
}

func TestOracleFailureIsFatal(t *testing.T) {
	syn := &Synthesizer{Oracle: &capturingOracle{err: errors.New("down")}, Logger: zerolog.Nop()}
	_, err := syn.Synthesize(context.Background(), Input{SystemPrompt: "s", Query: "q"})
	if !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestHistoryIsIncludedVerbatim(t *testing.T) {
	oracle := &capturingOracle{response: "ok"}
	syn := &Synthesizer{Oracle: oracle, Logger: zerolog.Nop()}

	history := "User: List department X's staff\nAssistant: Alice and Bob.\n"
	if _, err := syn.Synthesize(context.Background(), Input{
		SystemPrompt: "s",
		History:      history,
		Query:        "How many are there?",
	}); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !strings.Contains(oracle.lastPrompt, "List department X's staff") {
		t.Fatalf("prior turn not included verbatim:\n%s", oracle.lastPrompt)
	}
}
