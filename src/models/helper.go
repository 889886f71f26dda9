package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Config carries the persona-level model parameters shared by every provider.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// New builds an Oracle for the named provider.
func New(ctx context.Context, provider string, cfg Config) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai", "":
		return NewOpenAIOracle(cfg), nil
	case "anthropic", "claude":
		return NewAnthropicOracle(cfg), nil
	case "ollama":
		return NewOllamaOracle(cfg)
	case "gemini", "google":
		return NewGeminiOracle(ctx, cfg)
	case "dummy":
		return NewDummyOracle(""), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider: %s", provider)
	}
}

// ExtractJSON pulls a JSON object out of a raw completion. Models wrap JSON in
// fenced code blocks more often than not, so try fences first, then the
// outermost brace pair, then the raw text.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func unmarshalJSON(payload string, out any) error {
	return json.Unmarshal([]byte(payload), out)
}
