package graph

import "fmt"

// BudgetExceededError reports that a turn hit the transition ceiling before
// reaching a natural finish. Callers can advise the user to retry with a
// narrower request.
type BudgetExceededError struct {
	Steps int
	Max   int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("graph step budget exceeded: %d transitions (max %d)", e.Steps, e.Max)
}

// WorkerError reports a turn-fatal worker model failure. Unlike tool and
// routing failures there is no safe default: no text exists to show the user.
type WorkerError struct {
	Worker string
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %q failed: %v", e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }
