// Package graph implements the orchestration state machine that wires the
// supervisor, workers, tool gateway and compliance guardrail into one loop:
//
//	Start -> Supervisor -> Worker -> (Tools -> Worker)* -> Supervisor -> ...
//	      -> Guardrail -> End
//
// The graph owns no conversation state; it reads and extends the turn
// context's session snapshot through emitted events. Total transitions are
// bounded by a step ceiling so that adversarial or noncompliant model output
// can never trap a turn in a loop.
package graph

import (
	"fmt"

	"github.com/senarath/smartscout/agent"
	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/gateway"
)

const defaultMaxSteps = 50

// Options configure a Graph.
type Options struct {
	// MaxSteps bounds total node transitions per turn.
	MaxSteps int
}

// Graph is a compiled orchestration loop over a fixed worker set. Construct
// once, execute many turns.
type Graph struct {
	supervisor *agent.Supervisor
	workers    map[string]*agent.Worker
	guardrail  *agent.Guardrail
	gw         *gateway.Gateway
	opts       Options
}

// New compiles a graph. The worker routing table is built here, and each
// worker's tool subset is registered with the gateway under its identity.
func New(
	supervisor *agent.Supervisor,
	workers []*agent.Worker,
	guardrail *agent.Guardrail,
	gw *gateway.Gateway,
	optFns ...func(o *Options),
) (*Graph, error) {
	if supervisor == nil {
		return nil, fmt.Errorf("graph: supervisor is required")
	}
	if guardrail == nil {
		return nil, fmt.Errorf("graph: guardrail is required")
	}
	if gw == nil {
		return nil, fmt.Errorf("graph: gateway is required")
	}

	opts := Options{MaxSteps: defaultMaxSteps}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSteps <= 0 {
		return nil, fmt.Errorf("graph: max steps must be positive, got %d", opts.MaxSteps)
	}

	table := make(map[string]*agent.Worker, len(workers))
	for _, w := range workers {
		if _, dup := table[w.Name()]; dup {
			return nil, fmt.Errorf("graph: duplicate worker name %q", w.Name())
		}
		table[w.Name()] = w
		gw.Register(w.Name(), w.Tools())
	}

	return &Graph{
		supervisor: supervisor,
		workers:    table,
		guardrail:  guardrail,
		gw:         gw,
		opts:       opts,
	}, nil
}

// MaxSteps returns the configured per-turn transition ceiling.
func (g *Graph) MaxSteps() int { return g.opts.MaxSteps }

// Execute runs one user turn to completion. The turn context's session
// snapshot must already contain the new user message. Self-healing failures
// (tool errors, routing errors) are absorbed; *WorkerError and
// *BudgetExceededError are turn-fatal and returned to the caller.
func (g *Graph) Execute(turnCtx *core.TurnContext) error {
	turnCtx.LogInfo("graph.start", "turn_id", turnCtx.TurnID, "max_steps", g.opts.MaxSteps)

	for {
		if err := turnCtx.Context.Err(); err != nil {
			return err
		}
		if err := turnCtx.Steps.Increment(); err != nil {
			return &BudgetExceededError{Steps: turnCtx.Steps.Count(), Max: g.opts.MaxSteps}
		}

		decision := g.supervisor.Decide(turnCtx)
		if err := turnCtx.EmitEvent(core.NewRouteEvent(turnCtx.TurnID, "supervisor", string(decision))); err != nil {
			return err
		}
		turnCtx.LogDebug("graph.route", "decision", string(decision))

		if decision == agent.RouteFinish {
			break
		}
		worker, ok := g.workers[string(decision)]
		if !ok {
			// Decide only returns registered names, but an unknown route
			// must still terminate rather than loop.
			turnCtx.LogWarn("graph.route.unknown", "decision", string(decision))
			break
		}

		if err := g.runWorker(turnCtx, worker); err != nil {
			return err
		}
	}

	if err := g.runGuardrail(turnCtx); err != nil {
		return err
	}

	turnCtx.LogInfo("graph.end", "turn_id", turnCtx.TurnID, "steps", turnCtx.Steps.Count())
	return nil
}

// runWorker drives the Worker -> (Tools -> Worker)* inner loop until the
// worker produces a message without tool calls.
func (g *Graph) runWorker(turnCtx *core.TurnContext, worker *agent.Worker) error {
	for {
		if err := turnCtx.Context.Err(); err != nil {
			return err
		}
		if err := turnCtx.Steps.Increment(); err != nil {
			return &BudgetExceededError{Steps: turnCtx.Steps.Count(), Max: g.opts.MaxSteps}
		}

		ev, err := worker.Step(turnCtx)
		if err != nil {
			return &WorkerError{Worker: worker.Name(), Err: err}
		}
		if err := turnCtx.EmitEvent(ev); err != nil {
			return err
		}

		calls := ev.GetFunctionCalls()
		if len(calls) == 0 {
			return nil // terminal text, hand back to the supervisor
		}

		if err := turnCtx.Steps.Increment(); err != nil {
			return &BudgetExceededError{Steps: turnCtx.Steps.Count(), Max: g.opts.MaxSteps}
		}
		for _, rev := range g.resolveCalls(turnCtx, worker, calls) {
			if err := turnCtx.EmitEvent(rev); err != nil {
				return err
			}
		}
	}
}

// resolveCalls answers a batch of tool calls, preserving batch order: one
// response event per call. Calls already answered in history are satisfied
// synthetically when the worker has dedup enabled; the rest go through the
// gateway concurrently.
func (g *Graph) resolveCalls(turnCtx *core.TurnContext, worker *agent.Worker, calls []core.FunctionCall) []core.Event {
	results := make([]core.Event, len(calls))

	var fresh []core.FunctionCall
	var freshIdx []int
	history := turnCtx.Session.ConversationHistory()
	for i, call := range calls {
		if worker.DedupeToolCalls() {
			if prior, ok := agent.FindPriorResponse(history, call); ok {
				turnCtx.LogDebug("graph.tool.dedup", "tool", call.Name, "call_id", call.ID, "prior_id", prior.ID)
				results[i] = core.NewFunctionResponseEvent(
					turnCtx.TurnID, worker.Name(), call.ID, call.Name,
					agent.SyntheticResponse(call, prior), nil,
				)
				continue
			}
		}
		fresh = append(fresh, call)
		freshIdx = append(freshIdx, i)
	}

	for j, rev := range g.gw.Execute(turnCtx, worker.Name(), fresh) {
		results[freshIdx[j]] = rev
	}
	return results
}

// runGuardrail applies the compliance check to the last conversation message.
// It amends only a worker-produced text message containing risk vocabulary;
// in every other case it is a no-op.
func (g *Graph) runGuardrail(turnCtx *core.TurnContext) error {
	history := turnCtx.Session.ConversationHistory()
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	if last.Content == nil || last.Content.Role != "assistant" {
		return nil
	}
	text := last.Text()
	if text == "" {
		return nil
	}

	amended, changed := g.guardrail.Apply(text)
	if !changed {
		return nil
	}

	turnCtx.LogInfo("graph.guardrail.applied", "author", last.Author)
	ev := core.NewAssistantMessageEvent(turnCtx.TurnID, last.Author, amended)
	ev.Metadata = map[string]string{"guardrail": "disclaimer"}
	return turnCtx.EmitEvent(ev)
}
