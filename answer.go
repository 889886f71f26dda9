package rag

import (
	"fmt"

	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

// Answer is the payload of one completed query cycle.
type Answer struct {
	Text          string         `json:"text"`
	SelectedTools []string       `json:"selected_tools"`
	Reasoning     string         `json:"reasoning,omitempty"`
	Degraded      bool           `json:"degraded,omitempty"`
	ToolResults   []tools.Result `json:"tool_results,omitempty"`
	CycleID       string         `json:"cycle_id"`
}

// SynthesisError marks the one failure that aborts a cycle: the oracle could
// not produce the final answer. Tool failures never surface here.
type SynthesisError struct {
	CycleID string
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for cycle %s: %v", e.CycleID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
