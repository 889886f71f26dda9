package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiOracle implements Oracle using Google's Gemini API.
type GeminiOracle struct {
	Client *genai.Client
	Config Config
}

// NewGeminiOracle reads GOOGLE_API_KEY or GEMINI_API_KEY from the environment.
func NewGeminiOracle(ctx context.Context, cfg Config) (*GeminiOracle, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiOracle{Client: client, Config: cfg}, nil
}

func (g *GeminiOracle) Complete(ctx context.Context, prompt string) (string, error) {
	model := g.Client.GenerativeModel(g.Config.Model)
	model.SetTemperature(g.Config.Temperature)
	if g.Config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.Config.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return geminiText(resp)
}

// geminiText pulls the first text part out of a response. Candidates can come
// back with no content or no parts at all; both count as an empty response.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	if text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return fmt.Sprint(resp.Candidates[0].Content.Parts[0]), nil
}

var _ Oracle = (*GeminiOracle)(nil)
