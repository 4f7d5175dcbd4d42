// Package agent contains the three node behaviors of the orchestration
// graph: Worker (a persona-scoped model with a fixed tool subset),
// Supervisor (the routing-only model with a fail-safe decision parser) and
// Guardrail (the deterministic compliance post-processor).
package agent

import (
	"fmt"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/model"
)

// generate performs one model invocation and returns the final content.
// Partial chunks are forwarded as partial events on the turn context so the
// caller's consumer sees live progress; only the final response is returned.
func generate(turnCtx *core.TurnContext, m model.Model, author string, req model.Request) (core.Content, error) {
	out, errCh := m.Generate(turnCtx.Context, req)

	var final *model.Response
	for out != nil || errCh != nil {
		select {
		case resp, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			if resp.Partial {
				ev := core.NewEvent(turnCtx.TurnID, author)
				ev.Content = &resp.Content
				partial := true
				ev.Partial = &partial
				if err := turnCtx.EmitEvent(ev); err != nil {
					return core.Content{}, err
				}
				continue
			}
			r := resp
			final = &r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return core.Content{}, err
			}
		case <-turnCtx.Done():
			return core.Content{}, turnCtx.Err()
		}
	}

	if final == nil {
		return core.Content{}, fmt.Errorf("model %q returned no final response", m.Info().Name)
	}
	return final.Content, nil
}

// ensureCallIDs fills in missing function call IDs so tool results can always
// be correlated back to their calls.
func ensureCallIDs(content *core.Content) {
	for i, p := range content.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok && fc.FunctionCall.ID == "" {
			fc.FunctionCall.ID = core.NewID()
			content.Parts[i] = fc
		}
	}
}
