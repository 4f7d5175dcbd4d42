// Package runner is the turn entry point: it accepts a user message for a
// session, executes the orchestration graph in the background and streams the
// resulting events to the caller while persisting them to the session store.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/graph"
	"github.com/senarath/smartscout/logging"
)

// Options configure a Runner.
type Options struct {
	// MaxSteps bounds graph transitions per turn.
	MaxSteps int
	// TurnTimeout bounds the wall-clock duration of a turn. Zero disables it.
	TurnTimeout time.Duration
	// BufferSize of the event channels.
	BufferSize int
	// Logger receives orchestration logs. Nil silences them.
	Logger logging.Logger
}

// Runner executes turns over a compiled graph. Turns for the same session are
// serialized: the conversation state is exclusively owned by one in-flight
// turn at a time.
type Runner struct {
	graph *graph.Graph
	store core.SessionStore
	opts  Options

	mu      sync.Mutex
	locks   map[string]*sync.Mutex        // per-session turn serialization
	cancels map[string]context.CancelFunc // active turns by turn ID
}

// New creates a runner over a graph and session store.
func New(g *graph.Graph, store core.SessionStore, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxSteps:   g.MaxSteps(),
		BufferSize: 64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{
		graph:   g,
		store:   store,
		opts:    opts,
		locks:   map[string]*sync.Mutex{},
		cancels: map[string]context.CancelFunc{},
	}
}

// Run starts one turn. It returns the turn ID plus channels carrying the
// turn's events and its terminal error (if any); both channels close when the
// turn completes. The user content is persisted as the turn's first event.
func (r *Runner) Run(ctx context.Context, sessionID string, userContent core.Content) (string, <-chan core.Event, <-chan error, error) {
	if _, err := r.store.Get(sessionID); err != nil {
		if _, err := r.store.Create(sessionID); err != nil {
			return "", nil, nil, err
		}
	}

	turnID := core.NewID()

	var cancel context.CancelFunc
	if r.opts.TurnTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.opts.TurnTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	r.registerCancel(turnID, cancel)

	events := make(chan core.Event, r.opts.BufferSize)
	errs := make(chan error, 1)

	go r.execute(ctx, sessionID, turnID, userContent, events, errs)

	return turnID, events, errs, nil
}

func (r *Runner) execute(
	ctx context.Context,
	sessionID, turnID string,
	userContent core.Content,
	events chan<- core.Event,
	errs chan<- error,
) {
	defer close(events)
	defer close(errs)
	defer r.releaseCancel(turnID)

	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	userEv := core.NewUserContentEvent(turnID, &userContent)
	if err := r.store.AppendEvent(sessionID, userEv); err != nil {
		errs <- err
		return
	}

	sess, err := r.store.Get(sessionID)
	if err != nil {
		errs <- err
		return
	}

	emit := make(chan core.Event, r.opts.BufferSize)
	turnCtx := core.NewTurnContext(ctx, sessionID, turnID, sess, r.opts.MaxSteps, emit, r.opts.Logger)

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for ev := range emit {
			if !ev.IsPartial() {
				if err := r.store.AppendEvent(sessionID, ev); err != nil {
					turnCtx.LogError("runner.persist.failed", "error", err.Error())
				}
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				// Consumer gone or budget blown; drain so emitters never block.
			}
		}
	}()

	execErr := r.graph.Execute(turnCtx)
	close(emit)
	<-forwarded

	if execErr != nil {
		errs <- execErr
	}
}

// Cancel aborts an in-flight turn. It reports whether the turn was known.
func (r *Runner) Cancel(turnID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[turnID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (r *Runner) sessionLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sessionID] = lock
	}
	return lock
}

func (r *Runner) registerCancel(turnID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[turnID] = cancel
}

func (r *Runner) releaseCancel(turnID string) {
	r.mu.Lock()
	cancel, ok := r.cancels[turnID]
	delete(r.cancels, turnID)
	r.mu.Unlock()
	if ok {
		cancel()
	}
}
