package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// DataPart is a structured data segment, e.g. a parsed market quote.
type DataPart struct {
	Data map[string]any
}

func (DataPart) isPart() {}

// FunctionCall describes a tool invocation request emitted by a worker's model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Correlation id; every call is answered by exactly one response carrying it
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

func (FunctionCallPart) isPart() {}

// FunctionResponse carries the outcome of a function call back into the
// conversation. Worker records which agent issued the originating call so the
// result is always routed to that same worker, never a default one.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches the originating FunctionCall ID
	Name     string `json:"name"`               // Tool name
	Worker   string `json:"worker,omitempty"`   // Identity of the worker that issued the call
	Response any    `json:"response,omitempty"` // Result payload (string or structured)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

func (FunctionResponsePart) isPart() {}

// Content holds a conversation role plus ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // user, assistant, tool, system
	Parts []Part `json:"parts"`
}

// NewUserText is a convenience constructor for single-text user content.
func NewUserText(text string) Content {
	return Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
}
