// Package translate converts natural-language requests into structured queries
// for schema-bound backends. Everything the oracle proposes is untrusted:
// a query only leaves this package after every referenced table, collection,
// column and operator has been checked against the tool's allow-list.
package translate

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes why a translation was rejected.
type ErrorKind string

const (
	// SchemaViolation: the generated query referenced a table, field or
	// operator outside the allow-list. The whole query is rejected; nothing
	// is silently dropped or substituted.
	SchemaViolation ErrorKind = "schema_violation"

	// GenerationFailure: the oracle failed or produced undecodable output.
	GenerationFailure ErrorKind = "generation_failure"
)

// Error is the translation failure type. Callers treat it as a single-tool
// failure, never as a cycle-fatal error.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation failed (%s): %s", e.Kind, e.Detail)
}

func violation(format string, args ...any) *Error {
	return &Error{Kind: SchemaViolation, Detail: fmt.Sprintf(format, args...)}
}

func generation(format string, args ...any) *Error {
	return &Error{Kind: GenerationFailure, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the error kind if err is a translation error.
func KindOf(err error) (ErrorKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
