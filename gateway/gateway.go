// Package gateway is the single boundary between workers and external tool
// capabilities. Every tool call a worker emits is resolved here: dispatched
// by name against the issuing worker's registered subset, executed with a
// per-call timeout and panic recovery, and answered with exactly one result
// event per call. Failures never escape as errors; they come back as
// human-readable result strings so the conversation keeps moving.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/tool"
)

const defaultCallTimeout = 30 * time.Second

// Options configure a Gateway.
type Options struct {
	// CallTimeout bounds each individual tool invocation.
	CallTimeout time.Duration
}

// Gateway dispatches tool calls for registered workers.
type Gateway struct {
	mu      sync.RWMutex
	toolset map[string]map[string]tool.Tool // worker -> tool name -> tool
	opts    Options
}

// New creates an empty gateway.
func New(optFns ...func(o *Options)) *Gateway {
	opts := Options{CallTimeout: defaultCallTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{toolset: map[string]map[string]tool.Tool{}, opts: opts}
}

// Register binds a worker's tool subset. A worker can only reach tools
// registered under its own name.
func (g *Gateway) Register(worker string, tools []tool.Tool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	byName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	g.toolset[worker] = byName
}

// Execute runs a batch of calls issued by one worker message. Calls run
// concurrently; the returned events match the batch in length and order, one
// response per call, each correlated by call ID and tagged with the issuing
// worker's identity.
func (g *Gateway) Execute(turnCtx *core.TurnContext, worker string, calls []core.FunctionCall) []core.Event {
	results := make([]core.Event, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call core.FunctionCall) {
			defer wg.Done()
			result := g.dispatch(turnCtx, worker, call)
			results[i] = core.NewFunctionResponseEvent(turnCtx.TurnID, worker, call.ID, call.Name, result, nil)
		}(i, call)
	}
	wg.Wait()

	return results
}

// dispatch resolves and runs one call. Every failure mode collapses into the
// returned result string.
func (g *Gateway) dispatch(turnCtx *core.TurnContext, worker string, call core.FunctionCall) (result any) {
	defer func() {
		if r := recover(); r != nil {
			turnCtx.LogError("gateway.panic", "tool", call.Name, "worker", worker, "panic", fmt.Sprintf("%v", r))
			result = fmt.Sprintf("Error: tool %q panicked: %v", call.Name, r)
		}
	}()

	t := g.lookup(worker, call.Name)
	if t == nil {
		turnCtx.LogWarn("gateway.unknown_tool", "tool", call.Name, "worker", worker)
		return fmt.Sprintf("Error: tool %q not found.", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for tool %q: %v", call.Name, err)
		}
	}

	ctx, cancel := context.WithTimeout(turnCtx.Context, g.opts.CallTimeout)
	defer cancel()
	callScope := *turnCtx
	callScope.Context = ctx
	toolCtx := core.NewToolContext(&callScope, call.ID, worker)

	out, err := t.Call(toolCtx, args)
	if err != nil {
		return fmt.Sprintf("Error executing tool %q: %v", call.Name, err)
	}
	return out
}

func (g *Gateway) lookup(worker, name string) tool.Tool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.toolset[worker][name]
}
