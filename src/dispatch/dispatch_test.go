package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

type behaveTool struct {
	name   string
	result tools.Result
	delay  time.Duration
	panics bool
}

func (b *behaveTool) Spec() tools.Spec { return tools.Spec{Name: b.name, Description: "d"} }

func (b *behaveTool) Execute(ctx context.Context, _ tools.Request) tools.Result {
	if b.panics {
		panic("backend exploded")
	}
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return tools.Fail(b.name, tools.Timeout, ctx.Err().Error(), true)
		}
	}
	return b.result
}

func planOf(ts ...tools.Tool) Plan {
	p := Plan{}
	for _, t := range ts {
		p.Invocations = append(p.Invocations, Invocation{Tool: t, Request: tools.Request{Query: "q"}})
	}
	return p
}

func TestRunReturnsOneResultPerInvocation(t *testing.T) {
	c := &Coordinator{Logger: zerolog.Nop()}
	plan := planOf(
		&behaveTool{name: "a", result: tools.Succeed("a", nil, "")},
		&behaveTool{name: "b", result: tools.Fail("b", tools.ConnectionError, "down", true)},
		&behaveTool{name: "c", result: tools.Succeed("c", nil, "")},
	)

	results := c.Run(context.Background(), plan)
	if len(results) != len(plan.Invocations) {
		t.Fatalf("expected %d results, got %d", len(plan.Invocations), len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Tool != want {
			t.Fatalf("result %d tagged %q, want %q", i, results[i].Tool, want)
		}
	}
}

func TestTimeoutYieldsFailureNotAbort(t *testing.T) {
	c := &Coordinator{Timeout: 50 * time.Millisecond, Logger: zerolog.Nop()}
	plan := planOf(
		&behaveTool{name: "slow", delay: 5 * time.Second},
		&behaveTool{name: "fast", result: tools.Succeed("fast", []tools.Fragment{{Content: "ok"}}, "")},
	)

	start := time.Now()
	results := c.Run(context.Background(), plan)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run did not respect timeout, took %s", elapsed)
	}

	if results[0].Success || results[0].Failure.Kind != tools.Timeout {
		t.Fatalf("slow tool should time out, got %+v", results[0])
	}
	if !results[1].Success {
		t.Fatalf("fast tool should be unaffected, got %+v", results[1].Failure)
	}
}

func TestPanickingToolBecomesFailureResult(t *testing.T) {
	c := &Coordinator{Logger: zerolog.Nop()}
	results := c.Run(context.Background(), planOf(&behaveTool{name: "bomb", panics: true}))

	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failure result, got %+v", results)
	}
	if results[0].Tool != "bomb" {
		t.Fatalf("panic result lost its tool tag: %+v", results[0])
	}
}

func TestAllFailuresIsAValidOutcome(t *testing.T) {
	c := &Coordinator{Logger: zerolog.Nop()}
	plan := planOf(
		&behaveTool{name: "a", result: tools.Fail("a", tools.ConnectionError, "down", true)},
		&behaveTool{name: "b", result: tools.Fail("b", tools.ConnectionError, "down", true)},
	)

	results := c.Run(context.Background(), plan)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Success {
			t.Fatalf("expected failure, got success: %+v", r)
		}
	}
}

func TestPerCycleToolCap(t *testing.T) {
	c := &Coordinator{MaxTools: 2, Logger: zerolog.Nop()}
	plan := planOf(
		&behaveTool{name: "a", result: tools.Succeed("a", nil, "")},
		&behaveTool{name: "b", result: tools.Succeed("b", nil, "")},
		&behaveTool{name: "c", result: tools.Succeed("c", nil, "")},
	)

	results := c.Run(context.Background(), plan)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[2].Success || results[2].Failure.Kind != tools.ValidationError {
		t.Fatalf("capped invocation should fail with ValidationError, got %+v", results[2])
	}
}
