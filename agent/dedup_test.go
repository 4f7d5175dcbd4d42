package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/core"
)

func callEvent(callID, name, args string) core.Event {
	ev := core.NewEvent("turn-1", "Analyst")
	ev.Content = &core.Content{Role: "assistant", Parts: []core.Part{
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: callID, Name: name, Arguments: args}},
	}}
	return ev
}

func TestFindPriorResponseMatchesNormalizedArgs(t *testing.T) {
	history := []core.Event{
		callEvent("call-1", "get_stock_price", `{"ticker":"JKH"}`),
		core.NewFunctionResponseEvent("turn-1", "Analyst", "call-1", "get_stock_price", "LKR 150.50", nil),
	}

	// Same payload with different whitespace and key formatting.
	prior, ok := FindPriorResponse(history, core.FunctionCall{
		ID: "call-2", Name: "get_stock_price", Arguments: ` { "ticker" : "JKH" } `,
	})
	require.True(t, ok)
	assert.Equal(t, "call-1", prior.ID)
	assert.Equal(t, "LKR 150.50", prior.Response)
}

func TestFindPriorResponseDifferentArgsMiss(t *testing.T) {
	history := []core.Event{
		callEvent("call-1", "get_stock_price", `{"ticker":"JKH"}`),
		core.NewFunctionResponseEvent("turn-1", "Analyst", "call-1", "get_stock_price", "LKR 150.50", nil),
	}

	_, ok := FindPriorResponse(history, core.FunctionCall{
		ID: "call-2", Name: "get_stock_price", Arguments: `{"ticker":"DIAL"}`,
	})
	assert.False(t, ok)

	_, ok = FindPriorResponse(history, core.FunctionCall{
		ID: "call-3", Name: "search_market_news", Arguments: `{"ticker":"JKH"}`,
	})
	assert.False(t, ok, "same args on a different tool must not match")
}

func TestFindPriorResponseSkipsFailedCalls(t *testing.T) {
	history := []core.Event{
		callEvent("call-1", "get_stock_price", `{"ticker":"JKH"}`),
		core.NewFunctionResponseEvent("turn-1", "Analyst", "call-1", "get_stock_price", nil,
			assert.AnError),
	}

	_, ok := FindPriorResponse(history, core.FunctionCall{
		ID: "call-2", Name: "get_stock_price", Arguments: `{"ticker":"JKH"}`,
	})
	assert.False(t, ok, "a failed call is worth retrying")
}

func TestFindPriorResponsePrefersLatest(t *testing.T) {
	history := []core.Event{
		callEvent("call-1", "get_stock_price", `{"ticker":"JKH"}`),
		core.NewFunctionResponseEvent("turn-1", "Analyst", "call-1", "get_stock_price", "old", nil),
		callEvent("call-2", "get_stock_price", `{"ticker":"JKH"}`),
		core.NewFunctionResponseEvent("turn-1", "Analyst", "call-2", "get_stock_price", "fresh", nil),
	}

	prior, ok := FindPriorResponse(history, core.FunctionCall{
		ID: "call-3", Name: "get_stock_price", Arguments: `{"ticker":"JKH"}`,
	})
	require.True(t, ok)
	assert.Equal(t, "fresh", prior.Response)
}

func TestSyntheticResponseReferencesOriginal(t *testing.T) {
	out := SyntheticResponse(
		core.FunctionCall{ID: "call-9", Name: "get_stock_price"},
		core.FunctionResponse{ID: "call-1", Response: "LKR 150.50"},
	)
	s, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, s, "call-1")
	assert.Contains(t, s, "LKR 150.50")
}
