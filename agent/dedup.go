package agent

import (
	"encoding/json"
	"fmt"

	"github.com/senarath/smartscout/core"
)

// FindPriorResponse looks up an earlier response matching a call's
// (tool name, normalized arguments) pair. Models under pressure sometimes
// re-issue a call they already have the answer to; answering it from history
// keeps every call correlated to exactly one result without paying for the
// dispatch again.
func FindPriorResponse(history []core.Event, call core.FunctionCall) (core.FunctionResponse, bool) {
	want := callKey(call)

	// Map call IDs to their (name, args) key, then match responses back.
	keysByID := map[string]string{}
	var found core.FunctionResponse
	var ok bool
	for _, ev := range history {
		for _, fc := range ev.GetFunctionCalls() {
			if fc.ID != "" && fc.ID != call.ID {
				keysByID[fc.ID] = callKey(fc)
			}
		}
		for _, fr := range ev.GetFunctionResponses() {
			if fr.Error != "" {
				continue // failed calls are worth retrying
			}
			if keysByID[fr.ID] == want {
				found = fr
				ok = true
			}
		}
	}
	return found, ok
}

// SyntheticResponse builds the stand-in result for a deduplicated call,
// referencing the earlier data so the model sees where it came from.
func SyntheticResponse(call core.FunctionCall, prior core.FunctionResponse) any {
	return fmt.Sprintf("Duplicate call; reusing earlier result (call %s): %v", prior.ID, prior.Response)
}

// callKey canonicalizes a call into a comparable (name, arguments) key.
// Arguments are round-tripped through JSON so key order and whitespace
// differences do not defeat the match.
func callKey(call core.FunctionCall) string {
	args := call.Arguments
	var parsed any
	if err := json.Unmarshal([]byte(call.Arguments), &parsed); err == nil {
		if normalized, err := json.Marshal(parsed); err == nil {
			args = string(normalized)
		}
	}
	return call.Name + "\x00" + args
}
