package model

import (
	"context"
	"sync"

	"github.com/senarath/smartscout/core"
)

// ScriptedModel is an in-memory Model that replays a queued script of
// responses and errors in order. It drives deterministic orchestration tests:
// enqueue one entry per expected model invocation.
type ScriptedModel struct {
	info  Info
	mu    sync.Mutex
	queue []scriptEntry
	calls []Request
}

type scriptEntry struct {
	resp Response
	err  error
}

// NewScriptedModel constructs an empty ScriptedModel with tool support enabled.
func NewScriptedModel(name string) *ScriptedModel {
	return &ScriptedModel{
		info: Info{Name: name, Provider: "scripted", SupportsTools: true},
	}
}

// EnqueueText queues a plain assistant text response.
func (m *ScriptedModel) EnqueueText(text string) {
	m.enqueue(Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}},
		FinishReason: "stop",
	}, nil)
}

// EnqueueToolCalls queues an assistant response carrying the given tool call
// requests and no text content.
func (m *ScriptedModel) EnqueueToolCalls(calls ...core.FunctionCall) {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	m.enqueue(Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: "tool_calls",
	}, nil)
}

// EnqueueResponse queues an arbitrary response.
func (m *ScriptedModel) EnqueueResponse(resp Response) { m.enqueue(resp, nil) }

// EnqueueError queues a generation failure.
func (m *ScriptedModel) EnqueueError(err error) { m.enqueue(Response{}, err) }

func (m *ScriptedModel) enqueue(resp Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scriptEntry{resp: resp, err: err})
}

// Calls returns the requests seen so far, in order.
func (m *ScriptedModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Request, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Generate implements Model by replaying the next scripted entry. A drained
// script yields an empty final response, which downstream parse-or-default
// logic treats as invalid output.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls = append(m.calls, req)
	var entry scriptEntry
	if len(m.queue) > 0 {
		entry = m.queue[0]
		m.queue = m.queue[1:]
	} else {
		entry = scriptEntry{resp: Response{
			Content:      core.Content{Role: "assistant", Parts: []core.Part{}},
			FinishReason: "stop",
		}}
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if entry.err != nil {
			select {
			case <-ctx.Done():
			case errCh <- entry.err:
			}
			return
		}
		select {
		case <-ctx.Done():
		case respCh <- entry.resp:
		}
	}()

	return respCh, errCh
}

// Info implements the Model interface.
func (m *ScriptedModel) Info() Info { return m.info }
