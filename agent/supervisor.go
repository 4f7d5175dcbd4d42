package agent

import (
	"fmt"
	"strings"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/model"
)

// RouteDecision is the supervisor's verdict: the name of the worker to run
// next, or RouteFinish to terminate the loop.
type RouteDecision string

// RouteFinish terminates the supervisor loop and hands the turn to the
// guardrail.
const RouteFinish RouteDecision = "FINISH"

// SupervisorOptions configure a Supervisor.
type SupervisorOptions struct {
	// Instructions replaces the generated routing prompt when non-empty.
	Instructions string
}

// Supervisor owns the routing decision. It never answers the user itself: its
// single job is to pick the next worker or finish. The decision is a strict
// parse against the closed set of worker names plus FINISH; anything the
// parser cannot place, and any model failure, resolves to FINISH so a broken
// router can never trap a turn in a loop.
type Supervisor struct {
	model   model.Model
	workers []*Worker
	opts    SupervisorOptions
}

// NewSupervisor creates a supervisor over the given workers.
func NewSupervisor(m model.Model, workers []*Worker, optFns ...func(o *SupervisorOptions)) *Supervisor {
	opts := SupervisorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Supervisor{model: m, workers: workers, opts: opts}
}

// Decide picks the next route from the current conversation snapshot. It
// never returns an error: every failure mode collapses to RouteFinish.
func (s *Supervisor) Decide(turnCtx *core.TurnContext) RouteDecision {
	req := model.Request{
		Instructions: s.instructions(),
		Contents:     contentsFromEvents(turnCtx.Session.ConversationHistory()),
	}

	content, err := generate(turnCtx, s.model, "supervisor", req)
	if err != nil {
		turnCtx.LogWarn("supervisor.decide.failed", "error", err.Error())
		return RouteFinish
	}

	var text strings.Builder
	for _, p := range content.Parts {
		if tp, ok := p.(core.TextPart); ok {
			text.WriteString(tp.Text)
		}
	}

	decision, ok := s.parse(text.String())
	if !ok {
		turnCtx.LogWarn("supervisor.decide.unparseable", "output", text.String())
		return RouteFinish
	}
	return decision
}

// parse maps raw model output onto the closed decision set. The fast path is
// an exact (case-insensitive, punctuation-trimmed) match; failing that, an
// output mentioning exactly one option is accepted. Everything else fails.
func (s *Supervisor) parse(raw string) (RouteDecision, bool) {
	normalized := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "\"'`.!:"))
	if normalized == "" {
		return RouteFinish, false
	}

	options := []RouteDecision{RouteFinish}
	for _, w := range s.workers {
		options = append(options, RouteDecision(w.Name()))
	}

	for _, opt := range options {
		if normalized == strings.ToUpper(string(opt)) {
			return opt, true
		}
	}

	var mentioned []RouteDecision
	for _, opt := range options {
		if strings.Contains(normalized, strings.ToUpper(string(opt))) {
			mentioned = append(mentioned, opt)
		}
	}
	if len(mentioned) == 1 {
		return mentioned[0], true
	}
	return RouteFinish, false
}

func (s *Supervisor) instructions() string {
	if s.opts.Instructions != "" {
		return s.opts.Instructions
	}

	var names []string
	var lines []string
	for _, w := range s.workers {
		names = append(names, w.Name())
		lines = append(lines, fmt.Sprintf("- %s: %s", w.Name(), w.Description()))
	}

	return fmt.Sprintf(`You are a supervisor routing a financial analysis conversation between specialized workers.

Workers:
%s

Rules:
1. Respond with exactly one word: a worker name (%s) or FINISH.
2. If the latest worker message already answers the user's question in plain text, respond FINISH.
3. Route back to a worker only when its answer is demonstrably incomplete.
4. When in doubt, respond FINISH.`,
		strings.Join(lines, "\n"), strings.Join(names, ", "))
}
