package agent

import (
	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/model"
	"github.com/senarath/smartscout/tool"
)

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	// DedupeToolCalls answers repeated (tool, arguments) calls from history
	// instead of re-dispatching them. Enabled by default.
	DedupeToolCalls bool
	// Stream requests partial response chunks from the model.
	Stream bool
}

// Worker is a specialized persona backed by a model and a fixed tool subset.
// One Step is exactly one model invocation over the current conversation
// snapshot, producing exactly one new message event tagged with the worker's
// identity. A worker never routes; it only answers or asks for tools.
type Worker struct {
	name         string
	description  string
	instructions string
	model        model.Model
	tools        []tool.Tool
	opts         WorkerOptions
}

// NewWorker creates a worker. The description is what the supervisor sees when
// deciding where to route; the instructions are the worker's own persona.
func NewWorker(
	name, description, instructions string,
	m model.Model,
	tools []tool.Tool,
	optFns ...func(o *WorkerOptions),
) *Worker {
	opts := WorkerOptions{DedupeToolCalls: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Worker{
		name:         name,
		description:  description,
		instructions: instructions,
		model:        m,
		tools:        tools,
		opts:         opts,
	}
}

// Name returns the worker's unique identity.
func (w *Worker) Name() string { return w.name }

// Description returns the routing description shown to the supervisor.
func (w *Worker) Description() string { return w.description }

// Tools returns the worker's registered tool subset.
func (w *Worker) Tools() []tool.Tool { return w.tools }

// DedupeToolCalls reports whether repeated tool calls should be answered
// from history.
func (w *Worker) DedupeToolCalls() bool { return w.opts.DedupeToolCalls }

// Step runs one model invocation over the conversation snapshot and returns
// the resulting message event. The event is not yet emitted or persisted;
// that is the caller's job. Model failures propagate as errors.
func (w *Worker) Step(turnCtx *core.TurnContext) (core.Event, error) {
	turnCtx.LogDebug("worker.step", "worker", w.name)

	req := model.Request{
		Instructions: w.instructions,
		Contents:     contentsFromEvents(turnCtx.Session.ConversationHistory()),
		Tools:        w.toolDefinitions(),
		Stream:       w.opts.Stream,
	}

	content, err := generate(turnCtx, w.model, w.name, req)
	if err != nil {
		turnCtx.LogError("worker.step.failed", "worker", w.name, "error", err.Error())
		return core.Event{}, err
	}
	content.Role = "assistant"
	ensureCallIDs(&content)

	ev := core.NewEvent(turnCtx.TurnID, w.name)
	ev.Content = &content
	return ev, nil
}

func (w *Worker) toolDefinitions() []model.ToolDefinition {
	if len(w.tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(w.tools))
	for i, t := range w.tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}

func contentsFromEvents(events []core.Event) []core.Content {
	contents := make([]core.Content, 0, len(events))
	for _, ev := range events {
		if ev.Content != nil {
			contents = append(contents, *ev.Content)
		}
	}
	return contents
}
