package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/tool"
)

func newGatewayTurnCtx(t *testing.T) *core.TurnContext {
	t.Helper()
	sess := core.NewSession("sess-1")
	emit := make(chan core.Event, 64)
	return core.NewTurnContext(context.Background(), "sess-1", "turn-1", sess, 20, emit, nil)
}

func staticTool(name, result string) tool.Tool {
	return tool.NewFunctionTool(
		name,
		"static",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return result, nil
		},
	)
}

func TestGatewayBatchOrderAndCorrelation(t *testing.T) {
	gw := New()
	gw.Register("Analyst", []tool.Tool{
		staticTool("alpha", "A"),
		staticTool("beta", "B"),
	})

	calls := []core.FunctionCall{
		{ID: "c1", Name: "beta", Arguments: "{}"},
		{ID: "c2", Name: "alpha", Arguments: "{}"},
		{ID: "c3", Name: "beta", Arguments: "{}"},
	}

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", calls)
	require.Len(t, events, 3)

	for i, ev := range events {
		responses := ev.GetFunctionResponses()
		require.Len(t, responses, 1)
		assert.Equal(t, calls[i].ID, responses[0].ID)
		assert.Equal(t, calls[i].Name, responses[0].Name)
		assert.Equal(t, "Analyst", responses[0].Worker)
	}
	assert.Equal(t, "B", events[0].GetFunctionResponses()[0].Response)
	assert.Equal(t, "A", events[1].GetFunctionResponses()[0].Response)
}

func TestGatewayUnknownToolReturnsErrorString(t *testing.T) {
	gw := New()
	gw.Register("Analyst", nil)

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "nope", Arguments: "{}"},
	})
	require.Len(t, events, 1)

	resp := events[0].GetFunctionResponses()[0]
	s, ok := resp.Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, `tool "nope" not found`)
	assert.Empty(t, resp.Error, "failures are result strings, not errors")
}

func TestGatewayWorkerIsolation(t *testing.T) {
	gw := New()
	gw.Register("Analyst", []tool.Tool{staticTool("alpha", "A")})
	gw.Register("Researcher", nil)

	events := gw.Execute(newGatewayTurnCtx(t), "Researcher", []core.FunctionCall{
		{ID: "c1", Name: "alpha", Arguments: "{}"},
	})

	s, ok := events[0].GetFunctionResponses()[0].Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, "not found", "a worker must not reach another worker's tools")
}

func TestGatewayToolErrorToString(t *testing.T) {
	failing := tool.NewFunctionTool(
		"boom",
		"always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("backend down")
		},
	)
	gw := New()
	gw.Register("Analyst", []tool.Tool{failing})

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "boom", Arguments: "{}"},
	})

	s, ok := events[0].GetFunctionResponses()[0].Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, "backend down")
}

func TestGatewayRecoversPanic(t *testing.T) {
	panicking := tool.NewFunctionTool(
		"kaboom",
		"panics",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			panic("unexpected nil")
		},
	)
	gw := New()
	gw.Register("Analyst", []tool.Tool{panicking})

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "kaboom", Arguments: "{}"},
	})

	s, ok := events[0].GetFunctionResponses()[0].Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, "panicked")
	assert.Contains(t, s, "unexpected nil")
}

func TestGatewayInvalidArguments(t *testing.T) {
	gw := New()
	gw.Register("Analyst", []tool.Tool{staticTool("alpha", "A")})

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "alpha", Arguments: "{not json"},
	})

	s, ok := events[0].GetFunctionResponses()[0].Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, "invalid arguments")
}

func TestGatewayCallTimeout(t *testing.T) {
	slow := tool.NewFunctionTool(
		"slow",
		"waits on its context",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			select {
			case <-toolCtx.Context().Done():
				return nil, toolCtx.Context().Err()
			case <-time.After(5 * time.Second):
				return "too late", nil
			}
		},
	)
	gw := New(func(o *Options) { o.CallTimeout = 10 * time.Millisecond })
	gw.Register("Analyst", []tool.Tool{slow})

	start := time.Now()
	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "slow", Arguments: "{}"},
	})
	assert.Less(t, time.Since(start), time.Second)

	s, ok := events[0].GetFunctionResponses()[0].Response.(string)
	require.True(t, ok)
	assert.Contains(t, s, fmt.Sprint(context.DeadlineExceeded))
}

func TestGatewayConcurrentBatch(t *testing.T) {
	barrier := make(chan struct{})
	blocking := tool.NewFunctionTool(
		"pair",
		"completes only when both batch members run concurrently",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			select {
			case barrier <- struct{}{}:
			case <-barrier:
			case <-toolCtx.Context().Done():
				return nil, toolCtx.Context().Err()
			}
			return "ok", nil
		},
	)
	gw := New(func(o *Options) { o.CallTimeout = 2 * time.Second })
	gw.Register("Analyst", []tool.Tool{blocking})

	events := gw.Execute(newGatewayTurnCtx(t), "Analyst", []core.FunctionCall{
		{ID: "c1", Name: "pair", Arguments: "{}"},
		{ID: "c2", Name: "pair", Arguments: "{}"},
	})

	for _, ev := range events {
		assert.Equal(t, "ok", ev.GetFunctionResponses()[0].Response)
	}
}
