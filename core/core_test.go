package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- StepLimiter --------------------

func TestStepLimiter(t *testing.T) {
	l := NewStepLimiter(2)
	require.NoError(t, l.Increment())
	require.NoError(t, l.Increment())
	assert.Error(t, l.Increment())
	assert.Equal(t, 2, l.Count())
}

func TestStepLimiterUnlimited(t *testing.T) {
	l := NewStepLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Increment())
	}
	assert.Equal(t, -1, l.Remaining())
}

// -------------------- Events --------------------

func TestEventAccessors(t *testing.T) {
	ev := NewEvent("turn-1", "Analyst")
	ev.Content = &Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "thinking"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "c1", Name: "get_stock_price", Arguments: "{}"}},
	}}

	calls := ev.GetFunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID)
	assert.Equal(t, "thinking", ev.Text())
	assert.False(t, ev.IsFinalResponse(), "a message with pending calls is not final")

	final := NewAssistantMessageEvent("turn-1", "Analyst", "done")
	assert.True(t, final.IsFinalResponse())
}

func TestFunctionResponseEvent(t *testing.T) {
	ev := NewFunctionResponseEvent("turn-1", "Analyst", "c1", "get_stock_price", "LKR 150.50", nil)
	require.NotNil(t, ev.Content)
	assert.Equal(t, "tool", ev.Content.Role)

	responses := ev.GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "c1", responses[0].ID)
	assert.Equal(t, "Analyst", responses[0].Worker)
	assert.Empty(t, responses[0].Error)

	failed := NewFunctionResponseEvent("turn-1", "Analyst", "c2", "get_stock_price", nil, assert.AnError)
	assert.NotEmpty(t, failed.GetFunctionResponses()[0].Error)
}

// -------------------- Session --------------------

func TestSessionConversationHistoryFilters(t *testing.T) {
	sess := NewSession("s1")
	sess.AddEvent(NewUserMessageEvent("t1", "hello"))
	sess.AddEvent(NewRouteEvent("t1", "supervisor", "Analyst")) // control, no content

	partial := NewAssistantMessageEvent("t1", "Analyst", "chunk")
	isPartial := true
	partial.Partial = &isPartial
	sess.AddEvent(partial)

	sess.AddEvent(NewAssistantMessageEvent("t1", "Analyst", "full answer"))

	history := sess.ConversationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Text())
	assert.Equal(t, "full answer", history[1].Text())
}

func TestSessionCloneIsIndependent(t *testing.T) {
	sess := NewSession("s1")
	sess.AddEvent(NewUserMessageEvent("t1", "hello"))

	clone := sess.Clone()
	clone.AddEvent(NewUserMessageEvent("t1", "only in clone"))

	assert.Len(t, sess.GetEvents(), 1)
	assert.Len(t, clone.GetEvents(), 2)
}

// -------------------- TurnContext --------------------

func TestTurnContextEmitAppendsToSnapshot(t *testing.T) {
	sess := NewSession("s1")
	emit := make(chan Event, 8)
	turnCtx := NewTurnContext(context.Background(), "s1", "t1", sess, 10, emit, nil)

	require.NoError(t, turnCtx.EmitEvent(NewAssistantMessageEvent("t1", "Analyst", "answer")))
	assert.Len(t, sess.GetEvents(), 1, "non-partial events extend the working snapshot")
	assert.Len(t, emit, 1)

	partial := NewAssistantMessageEvent("t1", "Analyst", "chunk")
	isPartial := true
	partial.Partial = &isPartial
	require.NoError(t, turnCtx.EmitEvent(partial))
	assert.Len(t, sess.GetEvents(), 1, "partials are forwarded but not recorded")
	assert.Len(t, emit, 2)
}

func TestTurnContextEmitHonorsCancellation(t *testing.T) {
	sess := NewSession("s1")
	emit := make(chan Event) // unbuffered, nobody reading
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	turnCtx := NewTurnContext(ctx, "s1", "t1", sess, 10, emit, nil)

	err := turnCtx.EmitEvent(NewAssistantMessageEvent("t1", "Analyst", "answer"))
	assert.ErrorIs(t, err, context.Canceled)
}
