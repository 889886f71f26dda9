package tools

import (
	"context"
	"testing"
)

type fakeTool struct {
	name   string
	result Result
}

func (f *fakeTool) Spec() Spec { return Spec{Name: f.name, Description: "fake"} }
func (f *fakeTool) Execute(context.Context, Request) Result {
	return f.result
}

func TestRegistryPreservesDeclarationOrder(t *testing.T) {
	r := NewRegistry([]Tool{
		&fakeTool{name: "sql_query"},
		&fakeTool{name: "document_search"},
		&fakeTool{name: "web_search"},
	})

	names := r.Names()
	want := []string{"sql_query", "document_search", "web_search"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("order[%d]: expected %s, got %s", i, n, names[i])
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&fakeTool{name: "web_search"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(&fakeTool{name: "Web_Search"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry([]Tool{&fakeTool{name: "SQL_Query"}})
	if _, ok := r.Lookup("sql_query"); !ok {
		t.Fatalf("lookup by lower-cased name failed")
	}
}
