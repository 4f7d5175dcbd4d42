package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/internal/util"
)

// -------------------- Schema & Validation --------------------

type sampleArgs struct {
	Ticker string `json:"ticker" description:"CSE ticker symbol"`
	Limit  *int   `json:"limit" description:"Optional result cap"`
	Note   string `json:"note,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleArgs{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "ticker")
	assert.Contains(t, props, "limit")
	assert.Contains(t, props, "note")

	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"ticker"}, req, "pointer and omitempty fields are optional")
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ticker": map[string]any{"type": "string"},
		},
		"required": []any{"ticker"},
	}

	assert.NoError(t, util.ValidateParameters(map[string]any{"ticker": "JKH"}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{}, schema), "missing required")
	assert.Error(t, util.ValidateParameters(map[string]any{"ticker": 42}, schema), "wrong type")
}

// -------------------- FunctionTool --------------------

func newToolCtx(t *testing.T) *core.ToolContext {
	t.Helper()
	sess := core.NewSession("sess-1")
	emit := make(chan core.Event, 8)
	turnCtx := core.NewTurnContext(context.Background(), "sess-1", "turn-1", sess, 10, emit, nil)
	return core.NewToolContext(turnCtx, "call-1", "Analyst")
}

func TestFunctionToolCall(t *testing.T) {
	ft := NewFunctionToolFromStruct(
		"lookup",
		"Looks up a ticker.",
		sampleArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			assert.Equal(t, "call-1", toolCtx.CallID())
			assert.Equal(t, "Analyst", toolCtx.Worker())
			return "found " + args["ticker"].(string), nil
		},
	)

	result, err := ft.Call(newToolCtx(t), map[string]any{"ticker": "JKH"})
	require.NoError(t, err)
	assert.Equal(t, "found JKH", result)
}

func TestFunctionToolValidationError(t *testing.T) {
	ft := NewFunctionToolFromStruct("lookup", "d", sampleArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			t.Fatal("must not execute on invalid args")
			return nil, nil
		},
	)

	_, err := ft.Call(newToolCtx(t), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "lookup", toolErr.Tool)
}

func TestFunctionToolExecutionError(t *testing.T) {
	ft := NewFunctionTool("boom", "d",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("backend down")
		},
	)

	_, err := ft.Call(newToolCtx(t), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "backend down")
}

func TestFunctionToolPreservesToolError(t *testing.T) {
	custom := NewToolError("boom", "rate limited", "RATE_LIMITED")
	ft := NewFunctionTool("boom", "d",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return nil, custom
		},
	)

	_, err := ft.Call(newToolCtx(t), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code, "custom codes pass through unchanged")
}
