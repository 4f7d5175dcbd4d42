package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/model"
	"github.com/senarath/smartscout/tool"
)

func echoTool() tool.Tool {
	return tool.NewFunctionTool(
		"echo",
		"Echoes its input.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return args, nil
		},
	)
}

func newWorkerTurnCtx(t *testing.T) *core.TurnContext {
	t.Helper()
	sess := core.NewSession("sess-1")
	sess.AddEvent(core.NewUserMessageEvent("turn-1", "price of JKH"))
	emit := make(chan core.Event, 64)
	return core.NewTurnContext(context.Background(), "sess-1", "turn-1", sess, 20, emit, nil)
}

func TestWorkerStepProducesTaggedEvent(t *testing.T) {
	m := model.NewScriptedModel("m")
	m.EnqueueText("JKH is at LKR 150.50.")
	w := NewWorker("Analyst", "quant", "persona", m, nil)

	ev, err := w.Step(newWorkerTurnCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "Analyst", ev.Author)
	assert.Equal(t, "turn-1", ev.TurnID)
	assert.Equal(t, "assistant", ev.Content.Role)
	assert.Equal(t, "JKH is at LKR 150.50.", ev.Text())
}

func TestWorkerStepSendsPersonaAndTools(t *testing.T) {
	m := model.NewScriptedModel("m")
	m.EnqueueText("ok")
	w := NewWorker("Analyst", "quant", "You are an analyst.", m, []tool.Tool{echoTool()})

	_, err := w.Step(newWorkerTurnCtx(t))
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "You are an analyst.", calls[0].Instructions)
	require.Len(t, calls[0].Tools, 1)
	assert.Equal(t, "echo", calls[0].Tools[0].Function.Name)
	require.Len(t, calls[0].Contents, 1)
	assert.Equal(t, "user", calls[0].Contents[0].Role)
}

func TestWorkerStepPropagatesModelError(t *testing.T) {
	m := model.NewScriptedModel("m")
	m.EnqueueError(errors.New("quota exceeded"))
	w := NewWorker("Analyst", "quant", "persona", m, nil)

	_, err := w.Step(newWorkerTurnCtx(t))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestWorkerStepAssignsMissingCallIDs(t *testing.T) {
	m := model.NewScriptedModel("m")
	m.EnqueueToolCalls(core.FunctionCall{Name: "echo", Arguments: `{}`})
	w := NewWorker("Analyst", "quant", "persona", m, []tool.Tool{echoTool()})

	ev, err := w.Step(newWorkerTurnCtx(t))
	require.NoError(t, err)

	calls := ev.GetFunctionCalls()
	require.Len(t, calls, 1)
	assert.NotEmpty(t, calls[0].ID, "tool results need an ID to correlate against")
}

func TestWorkerDedupeDefaultsOn(t *testing.T) {
	w := NewWorker("Analyst", "quant", "persona", model.NewScriptedModel("m"), nil)
	assert.True(t, w.DedupeToolCalls())

	off := NewWorker("Analyst", "quant", "persona", model.NewScriptedModel("m"), nil,
		func(o *WorkerOptions) { o.DedupeToolCalls = false })
	assert.False(t, off.DedupeToolCalls())
}
