package models

import (
	"context"
	"errors"
	"fmt"
)

// Oracle is the narrow completion client shared by selection, translation and
// synthesis. Implementations wrap one provider and return plain text.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrUnavailable marks transport or provider failures. Callers decide how to
	// degrade; the orchestration core never retries.
	ErrUnavailable = errors.New("completion oracle unavailable")

	// ErrMalformed marks output that could not be decoded into the requested shape.
	ErrMalformed = errors.New("completion oracle returned malformed output")
)

const jsonInstruction = "\n\nRespond with a single JSON object and nothing else. " +
	"Do not add explanations outside the JSON."

// CompleteJSON is the schema-constrained call shape. It appends a JSON-only
// instruction to the prompt, extracts the JSON payload from the raw completion
// and unmarshals it into out. Decode problems map to ErrMalformed, provider
// problems to ErrUnavailable, so all call sites share one error policy.
func CompleteJSON(ctx context.Context, o Oracle, prompt string, out any) error {
	raw, err := o.Complete(ctx, prompt+jsonInstruction)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	payload := ExtractJSON(raw)
	if payload == "" {
		return fmt.Errorf("%w: no JSON found in completion", ErrMalformed)
	}
	if err := unmarshalJSON(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
