// Package tool implements the function calling subsystem that lets workers
// invoke structured capabilities (market data lookups, news search,
// computations) with schema validated arguments and consistent error handling.
package tool

import (
	"fmt"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/internal/util"
)

// Tool is a structured capability a worker can invoke through the gateway.
//
// Implementations should provide descriptive names, define a proper JSON
// schema for parameters, and be safe for concurrent use: the gateway runs
// tool calls from a single batch in parallel.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description is provided to the model so it knows when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with parsed and validated arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
