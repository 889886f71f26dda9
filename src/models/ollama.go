package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaOracle implements Oracle against a local Ollama server.
type OllamaOracle struct {
	Client *ollama.Client
	Config Config
}

// NewOllamaOracle reads OLLAMA_HOST from the environment, defaulting to the
// standard local port.
func NewOllamaOracle(cfg Config) (*OllamaOracle, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &OllamaOracle{Client: ollama.NewClient(u, httpClient), Config: cfg}, nil
}

func (o *OllamaOracle) Complete(ctx context.Context, prompt string) (string, error) {
	var text strings.Builder

	req := &ollama.GenerateRequest{
		Model:  o.Config.Model,
		Prompt: prompt,
		Options: map[string]any{
			"temperature": o.Config.Temperature,
		},
	}

	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return "", err
	}

	return text.String(), nil
}

var _ Oracle = (*OllamaOracle)(nil)
