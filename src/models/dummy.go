package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyOracle is a lightweight Oracle useful for local testing without API calls.
// It echoes the last non-empty line of the prompt behind a fixed prefix.
type DummyOracle struct {
	Prefix string
}

func NewDummyOracle(prefix string) *DummyOracle {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyOracle{Prefix: prefix}
}

func (d *DummyOracle) Complete(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

var _ Oracle = (*DummyOracle)(nil)
