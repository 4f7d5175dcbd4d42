package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is the primary unit of communication between graph nodes, the runner
// and external clients. After emission it must be treated as immutable. It
// captures correlation (TurnID, ID, Author), optional conversational content,
// and error metadata for control events.
//
// Content may be nil for pure control events (e.g. routing decisions); those
// are excluded from the conversation history handed to models.
type Event struct {
	ID           string            `json:"id"`
	TurnID       string            `json:"turn_id"`
	Author       string            `json:"author"`
	Timestamp    time.Time         `json:"timestamp"`
	Content      *Content          `json:"content,omitempty"`
	Partial      *bool             `json:"partial,omitempty"`
	TurnComplete *bool             `json:"turn_complete,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewEvent creates a bare event authored by author bound to a turn.
// Prefer the semantic constructors below for common categories.
func NewEvent(turnID, author string) Event {
	return Event{
		ID:        NewID(),
		TurnID:    turnID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(turnID, text string) Event {
	e := NewEvent(turnID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
	return e
}

// NewUserContentEvent creates a user-authored event with arbitrary content.
func NewUserContentEvent(turnID string, content *Content) Event {
	e := NewEvent(turnID, "user")
	e.Content = content
	return e
}

// NewAssistantMessageEvent creates an assistant message authored by the named
// agent with a single text part.
func NewAssistantMessageEvent(turnID, author, text string) Event {
	e := NewEvent(turnID, author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: text}}}
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a tool
// invocation. The event is tagged with the worker identity that issued the
// originating call so the graph routes the result back to that worker.
func NewFunctionResponseEvent(turnID, worker, callID, toolName string, result any, err error) Event {
	e := NewEvent(turnID, worker)
	fr := FunctionResponse{ID: callID, Name: toolName, Worker: worker, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewRouteEvent records a supervisor routing decision as a content-free
// control event. It is visible to event consumers (live progress display) but
// filtered out of model-facing conversation history.
func NewRouteEvent(turnID, author, next string) Event {
	e := NewEvent(turnID, author)
	e.Metadata = map[string]string{"route": next}
	return e
}

// NewID generates a unique identifier for events and function calls.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether this event is a streaming fragment that will be
// followed by further events composing the final message.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// GetFunctionCalls returns any FunctionCall parts in original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts in original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether this event is terminal worker text: no
// pending tool calls or responses and not a streaming fragment.
func (e Event) IsFinalResponse() bool {
	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}

// Text concatenates the text parts of the event content.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range e.Content.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}
