package core

import (
	"context"

	"github.com/senarath/smartscout/logging"
)

// TurnContext carries the execution scope for one user turn through the
// orchestration graph. It aggregates:
//   - The ambient cancellation Context (caller-supplied deadline / budget)
//   - Identifiers (SessionID, TurnID)
//   - A working Session snapshot (the append-only conversation state)
//   - The Emit channel for streaming node-transition events to the runner
//   - The StepLimiter bounding total graph transitions
//
// EmitEvent extends the session snapshot with every non-partial event it
// sends, so graph nodes always see their own prior output in history.
type TurnContext struct {
	Context          context.Context
	SessionID, TurnID string
	Session          *Session
	Emit             chan<- Event
	Steps            *StepLimiter

	*loggerAdapter
}

// NewTurnContext constructs a TurnContext for one turn.
func NewTurnContext(
	ctx context.Context,
	sessionID, turnID string,
	sess *Session,
	maxSteps int,
	emit chan<- Event,
	logger logging.Logger,
) *TurnContext {
	return &TurnContext{
		Context:       ctx,
		SessionID:     sessionID,
		TurnID:        turnID,
		Session:       sess,
		Emit:          emit,
		Steps:         NewStepLimiter(maxSteps),
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (tc *TurnContext) Done() <-chan struct{} { return tc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (tc *TurnContext) Err() error { return tc.Context.Err() }

// History returns the model-facing conversation snapshot for this turn.
func (tc *TurnContext) History() []Event {
	if tc.Session == nil {
		return []Event{}
	}
	return tc.Session.ConversationHistory()
}

// LastEvent returns the most recent session event, if any.
func (tc *TurnContext) LastEvent() (Event, bool) {
	if tc.Session == nil {
		return Event{}, false
	}
	return tc.Session.LastEvent()
}

// EmitEvent sends an event on the Emit channel, honoring cancellation, and
// records non-partial events in the working session snapshot. The runner
// persists the same events to the session store as they stream out.
func (tc *TurnContext) EmitEvent(ev Event) error {
	select {
	case <-tc.Context.Done():
		return tc.Context.Err()
	case tc.Emit <- ev:
	}

	if !ev.IsPartial() && tc.Session != nil {
		tc.Session.AddEvent(ev)
	}

	return nil
}
