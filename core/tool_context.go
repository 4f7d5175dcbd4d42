package core

import (
	"context"
	"fmt"

	"github.com/senarath/smartscout/logging"
)

// ToolContext is the constrained surface handed to tool implementations for a
// single function call. It exposes identifiers for correlation and a read-only
// view of the conversation, nothing that could mutate orchestration state.
type ToolContext struct {
	turnCtx *TurnContext
	callID  string
	worker  string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent TurnContext, the
// unique function call id and the identity of the worker that issued the call.
func NewToolContext(turnCtx *TurnContext, callID, worker string) *ToolContext {
	return &ToolContext{
		turnCtx:       turnCtx,
		callID:        callID,
		worker:        worker,
		loggerAdapter: newLoggerAdapter(turnCtx.Logger()),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.turnCtx.Context }

// SessionID returns the session ID associated with the tool invocation.
func (tc *ToolContext) SessionID() string { return tc.turnCtx.SessionID }

// TurnID returns the turn ID associated with the tool invocation.
func (tc *ToolContext) TurnID() string { return tc.turnCtx.TurnID }

// CallID returns the function call correlation id.
func (tc *ToolContext) CallID() string { return tc.callID }

// Worker returns the identity of the worker that issued the call.
func (tc *ToolContext) Worker() string { return tc.worker }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// History returns the conversation history snapshot for context-aware tools.
func (tc *ToolContext) History() []Event { return tc.turnCtx.History() }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.turnCtx == nil || tc.turnCtx.SessionID == "" || tc.callID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
