// Package synthesis turns heterogeneous tool results plus conversation
// context into the final answer.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/models"
	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

// Input is everything one synthesis call needs. Results arrive in registry
// order so the rendered prompt is deterministic.
type Input struct {
	SystemPrompt string
	History      string
	Query        string
	Results      []tools.Result
}

// Synthesizer builds the final prompt and asks the oracle for the answer.
type Synthesizer struct {
	Oracle models.Oracle
	Logger zerolog.Logger
}

const synthesisGuidelines = `Guidelines:
- Answer in the same language as the user's question.
- Use only facts present in the context sources or the conversation history;
  never invent names, numbers or dates.
- Cite the source of specific facts, e.g. (source: handbook.pdf).
- If a source is marked unavailable, acknowledge the gap when it matters.
- If part of the question cannot be answered from the available material, say
  so explicitly.`

// Synthesize produces the answer text. Oracle failure here is fatal for the
// cycle: with no completion there is nothing to return to the user.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (string, error) {
	prompt := s.buildPrompt(in)

	answer, err := s.Oracle.Complete(ctx, prompt)
	if err != nil {
		s.Logger.Error().Err(err).Msg("synthesis completion failed")
		return "", fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty synthesis completion", models.ErrMalformed)
	}
	return answer, nil
}

func (s *Synthesizer) buildPrompt(in Input) string {
	var sb strings.Builder
	sb.Grow(4096)

	sb.WriteString(strings.TrimSpace(in.SystemPrompt))

	if strings.TrimSpace(in.History) != "" {
		sb.WriteString("\n\nPrevious conversation:\n")
		sb.WriteString(in.History)
	}

	sb.WriteString("\n\nContext gathered for this question:\n")
	sb.WriteString(RenderResults(in.Results))

	sb.WriteString("\n")
	sb.WriteString(synthesisGuidelines)

	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(strings.TrimSpace(in.Query))
	sb.WriteString("\n")

	return sb.String()
}

// RenderResults normalizes all tool results into an attributed context block.
// Failed tools are listed as unavailable rather than silently omitted, so the
// oracle can acknowledge the gap.
func RenderResults(results []tools.Result) string {
	if len(results) == 0 {
		return "(no tools were used for this question)\n"
	}

	var sb strings.Builder
	for _, res := range results {
		if !res.Success {
			fmt.Fprintf(&sb, "[%s] This source was unavailable (%s).\n", res.Tool, res.Failure.Kind)
			continue
		}
		if len(res.Fragments) == 0 {
			fmt.Fprintf(&sb, "[%s] No matching results.\n", res.Tool)
			continue
		}
		if res.ExecutedQuery != "" {
			fmt.Fprintf(&sb, "[%s] Executed: %s\n", res.Tool, res.ExecutedQuery)
		}
		for _, frag := range res.Fragments {
			content := strings.TrimSpace(frag.Content)
			if content == "" {
				continue
			}
			fmt.Fprintf(&sb, "[%s] Source: %s\n%s\n", res.Tool, frag.Source, content)
		}
	}
	return sb.String()
}
