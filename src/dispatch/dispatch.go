// Package dispatch fans the selected tool invocations out, enforces the
// per-invocation timeout and fans the results back in. Partial and even total
// failure are valid outcomes; the coordinator always returns one result per
// planned invocation.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/berkincetin/agentic-rag-framework/src/tools"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxTools = 4
)

// Invocation is one planned tool run. Invocations are independent: no tool
// observes another's result within a cycle.
type Invocation struct {
	Tool    tools.Tool
	Request tools.Request
}

// Plan is the immutable set of invocations for one cycle, in registry order.
type Plan struct {
	Invocations []Invocation
}

// Coordinator runs plans. Zero values fall back to the defaults above.
type Coordinator struct {
	Timeout  time.Duration
	MaxTools int
	Logger   zerolog.Logger
}

// Run executes every invocation concurrently and returns results in plan
// order. A timed-out, panicking or erroring invocation yields a failure
// result; the cycle is never aborted from here.
func (c *Coordinator) Run(ctx context.Context, plan Plan) []tools.Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxTools := c.MaxTools
	if maxTools <= 0 {
		maxTools = DefaultMaxTools
	}

	results := make([]tools.Result, len(plan.Invocations))

	var wg sync.WaitGroup
	for i, inv := range plan.Invocations {
		name := inv.Tool.Spec().Name

		// The per-cycle cap is explicit: excess invocations are reported as
		// failures, not silently dropped.
		if i >= maxTools {
			results[i] = tools.Fail(name, tools.ValidationError,
				fmt.Sprintf("per-cycle tool limit of %d exceeded", maxTools), false)
			continue
		}

		wg.Add(1)
		go func(idx int, inv Invocation, name string) {
			defer wg.Done()
			results[idx] = c.invoke(ctx, inv, name, timeout)
		}(i, inv, name)
	}
	wg.Wait()

	return results
}

func (c *Coordinator) invoke(ctx context.Context, inv Invocation, name string, timeout time.Duration) (res tools.Result) {
	invCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Adapters must not panic past their boundary, but a panicking tool must
	// not take the whole cycle down either.
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error().Str("tool", name).Interface("panic", r).Msg("tool invocation panicked")
			res = tools.Fail(name, tools.ConnectionError, fmt.Sprintf("tool panicked: %v", r), false)
		}
	}()

	done := make(chan tools.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- tools.Fail(name, tools.ConnectionError, fmt.Sprintf("tool panicked: %v", r), false)
			}
		}()
		done <- inv.Tool.Execute(invCtx, inv.Request)
	}()

	select {
	case res = <-done:
	case <-invCtx.Done():
		c.Logger.Warn().Str("tool", name).Dur("timeout", timeout).Msg("tool invocation timed out")
		res = tools.Fail(name, tools.Timeout, fmt.Sprintf("invocation exceeded %s", timeout), true)
	}

	if res.Tool == "" {
		res.Tool = name // result tagging is not optional
	}
	if !res.Success {
		c.Logger.Warn().Str("tool", name).Str("kind", string(res.Failure.Kind)).Str("reason", res.Failure.Reason).Msg("tool invocation failed")
	}
	return res
}
