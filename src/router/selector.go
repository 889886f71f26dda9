// Package router decides which tools run for a given query.
package router

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/models"
	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

// Selection is the outcome of one routing decision. Degraded is set whenever
// the oracle could not be used and a fallback picked the tools instead.
type Selection struct {
	Tools     []string
	Reasoning string
	Degraded  bool
}

// Keyword hints per tool family, used only as a fallback when the oracle
// fails. A match against the lower-cased query pre-selects that family.
var toolKeywords = map[string][]string{
	"sql_query":       {"database", "record", "table", "sql", "count", "how many", "budget", "course", "semester"},
	"mongo_query":     {"document", "collection", "field", "catalog", "record"},
	"document_search": {"document", "file", "article", "paper", "pdf", "policy", "handbook"},
	"web_search":      {"web", "internet", "online", "website", "news", "current", "latest"},
}

// Selector asks the completion oracle which registered tools fit the query.
type Selector struct {
	Oracle models.Oracle
	Logger zerolog.Logger
}

const selectionPrompt = `You decide which retrieval tools should run to answer a user's query.

Available tools:
%s
Recent conversation:
%s
User query: %s

Guidelines:
- Select only tools directly relevant to answering the query.
- Multiple tools are fine when the query spans sources.
- Simple greetings or questions answerable from the conversation alone need no
  tools: return an empty list.

Respond with JSON: {"selected_tools": ["..."], "reasoning": "..."}`

type selectionDecision struct {
	SelectedTools []string `json:"selected_tools"`
	Reasoning     string   `json:"reasoning"`
}

// Select produces the set of tool identifiers to invoke this cycle. The
// registry must be non-empty. With exactly one enabled tool the decision is
// trivial and the oracle is never consulted.
func (s *Selector) Select(ctx context.Context, query, history string, reg *tools.Registry) (Selection, error) {
	names := reg.Names()
	if len(names) == 0 {
		return Selection{}, fmt.Errorf("tool registry is empty")
	}
	if len(names) == 1 {
		return Selection{Tools: names, Reasoning: "only one tool is enabled"}, nil
	}

	prompt := fmt.Sprintf(selectionPrompt, renderSpecs(reg.Specs()), abbreviate(history, 1500), query)

	var decision selectionDecision
	if err := models.CompleteJSON(ctx, s.Oracle, prompt, &decision); err != nil {
		s.Logger.Warn().Err(err).Msg("tool selection degraded: oracle failed, falling back")
		return s.fallback(query, names, fmt.Sprintf("oracle selection failed: %v", err)), nil
	}

	// The oracle's output is untrusted: drop anything not in the registry.
	selected := make([]string, 0, len(decision.SelectedTools))
	seen := make(map[string]bool)
	for _, name := range names {
		for _, picked := range decision.SelectedTools {
			if strings.EqualFold(strings.TrimSpace(picked), name) && !seen[name] {
				selected = append(selected, name)
				seen[name] = true
			}
		}
	}

	// An explicit empty selection with valid JSON means "no tools needed"
	// and is honored; synthesis then runs on memory alone.
	if decision.SelectedTools != nil && len(decision.SelectedTools) == 0 {
		return Selection{Reasoning: decision.Reasoning}, nil
	}

	// The oracle named only unknown tools: treat as a failed selection.
	if len(selected) == 0 {
		s.Logger.Warn().Strs("proposed", decision.SelectedTools).Msg("tool selection degraded: no known tools proposed")
		return s.fallback(query, names, "oracle proposed no known tools"), nil
	}

	return Selection{Tools: selected, Reasoning: decision.Reasoning}, nil
}

// fallback prefers keyword-matched tools and falls back to every enabled tool,
// trading precision for availability.
func (s *Selector) fallback(query string, names []string, reason string) Selection {
	matched := keywordMatches(query, names)
	if len(matched) > 0 {
		return Selection{Tools: matched, Reasoning: reason + "; keyword-based selection", Degraded: true}
	}
	all := make([]string, len(names))
	copy(all, names)
	return Selection{Tools: all, Reasoning: reason + "; selected all enabled tools", Degraded: true}
}

func keywordMatches(query string, names []string) []string {
	lower := strings.ToLower(query)
	var matched []string
	for _, name := range names {
		for _, kw := range toolKeywords[name] {
			if strings.Contains(lower, kw) {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}

func renderSpecs(specs []tools.Spec) string {
	var sb strings.Builder
	for _, spec := range specs {
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Description)
	}
	return sb.String()
}

func abbreviate(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(none)"
	}
	if len(s) <= max {
		return s
	}
	cut := s[len(s)-max:]
	for len(cut) > 0 && !utf8.RuneStart(cut[0]) {
		cut = cut[1:]
	}
	return "..." + cut
}
