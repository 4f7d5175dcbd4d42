// Package anthropic implements model.Model on the Anthropic Messages API
// with tool use support.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/model"
)

// Options configure the Anthropic model adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind model.Model.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model adapter.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_20250514),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates an adapter from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_20250514),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. Streaming is not supported by this
// adapter; requests with Stream set fail on the error channel.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		if req.Stream {
			errCh <- fmt.Errorf("anthropic adapter does not support streaming")
			return
		}
		params, err := m.buildParams(req)
		if err != nil {
			errCh <- err
			return
		}
		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}
		out <- convertResponse(resp)
	}()
	return out, errCh
}

func (m *Model) buildParams(req model.Request) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	for _, c := range req.Contents {
		msg, ok, err := convertContent(c)
		if err != nil {
			return params, err
		}
		if ok {
			params.Messages = append(params.Messages, msg)
		}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}
	return params, nil
}

// convertContent maps a normalized content into an Anthropic message. Tool
// results become user-role tool_result blocks per the Messages API contract.
func convertContent(c core.Content) (anthropic.MessageParam, bool, error) {
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range c.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			var input any
			if part.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.FunctionCall.Arguments), &input); err != nil {
					return anthropic.MessageParam{}, false, fmt.Errorf("invalid tool call arguments: %w", err)
				}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(part.FunctionCall.ID, input, part.FunctionCall.Name))
		case core.FunctionResponsePart:
			fr := part.FunctionResponse
			text := fr.Error
			isError := fr.Error != ""
			if !isError {
				if s, ok := fr.Response.(string); ok {
					text = s
				} else {
					text = fmt.Sprintf("%v", fr.Response)
				}
			}
			blocks = append(blocks, anthropic.NewToolResultBlock(fr.ID, text, isError))
		}
	}
	if len(blocks) == 0 {
		return anthropic.MessageParam{}, false, nil
	}
	switch c.Role {
	case "assistant":
		return anthropic.NewAssistantMessage(blocks...), true, nil
	default:
		return anthropic.NewUserMessage(blocks...), true, nil
	}
}

func convertTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, tdef := range defs {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if props, ok := tdef.Function.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := tdef.Function.Parameters["required"].([]string); ok {
			schema.Required = req
		} else if reqAny, ok := tdef.Function.Parameters["required"].([]any); ok {
			required := make([]string, 0, len(reqAny))
			for _, r := range reqAny {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
			schema.Required = required
		}
		tools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tdef.Function.Name,
				Description: anthropic.String(tdef.Function.Description),
				InputSchema: schema,
			},
		}
	}
	return tools
}

func convertResponse(resp *anthropic.Message) model.Response {
	var parts []core.Part
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			tb := block.AsText()
			parts = append(parts, core.TextPart{Text: tb.Text})
		case "tool_use":
			tu := block.AsToolUse()
			parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: string(tu.Input),
			}})
		}
	}
	return model.Response{
		ID:           resp.ID,
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: string(resp.StopReason),
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
