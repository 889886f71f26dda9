// Package tools defines the closed set of retrieval tool families and the
// result envelope they all share. Adding a family means adding an adapter
// here; nothing is loaded reflectively.
package tools

import "context"

// Spec describes a tool to the selector: its registry identifier and the
// capability text the oracle reasons over.
type Spec struct {
	Name        string
	Description string
}

// Request is one invocation of a tool within a cycle.
type Request struct {
	SessionID string
	Query     string
}

// FailureKind classifies why a tool invocation failed.
type FailureKind string

const (
	// ConnectionError: the backend was unreachable or errored mid-query.
	ConnectionError FailureKind = "connection_error"
	// Timeout: the invocation exceeded the coordinator's per-tool bound.
	Timeout FailureKind = "timeout"
	// ValidationError: the request was malformed or disallowed and was never
	// executed. Schema-violating translations land here.
	ValidationError FailureKind = "validation_error"
	// TranslationError: the oracle could not produce a usable structured query.
	TranslationError FailureKind = "translation_error"
)

// Failure carries the reason a tool produced no payload.
type Failure struct {
	Kind      FailureKind
	Reason    string
	Retryable bool
}

// Fragment is one unit of retrieved content with enough provenance to cite.
type Fragment struct {
	Source  string
	Content string
	Score   float64
}

// Result is the tagged success/failure envelope every adapter returns. An
// empty fragment list with Success=true is a valid outcome (EmptyResult is
// not an error). The originating tool name is always set for attribution.
type Result struct {
	Tool          string
	Success       bool
	Fragments     []Fragment
	ExecutedQuery string
	Failure       *Failure
}

// Succeed builds a success envelope.
func Succeed(tool string, fragments []Fragment, executedQuery string) Result {
	return Result{Tool: tool, Success: true, Fragments: fragments, ExecutedQuery: executedQuery}
}

// Fail builds a failure envelope.
func Fail(tool string, kind FailureKind, reason string, retryable bool) Result {
	return Result{Tool: tool, Failure: &Failure{Kind: kind, Reason: reason, Retryable: retryable}}
}

// Tool is the execution contract common to all families. Execute must return
// within the caller's deadline and must never panic past its boundary; every
// failure is captured in the envelope.
type Tool interface {
	Spec() Spec
	Execute(ctx context.Context, req Request) Result
}
