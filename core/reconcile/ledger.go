package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// RunStatus is the lifecycle state of a ledger entry.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// ErrRunFinished is returned when a run is finalized a second time.
var ErrRunFinished = errors.New("run already finalized")

// RunOutcome is what a run reports when it ends.
type RunOutcome struct {
	Endpoint string
	Fetched  int
	Counts   Counts
}

// RunHandle is an open ledger entry. Its setters are safe for concurrent use.
type RunHandle struct {
	ID        uint
	Scope     Scope
	StartedAt time.Time

	mu       sync.Mutex
	outcome  RunOutcome
	finished bool
}

// NewRunHandle is used by Ledger implementations to hand out handles.
func NewRunHandle(id uint, scope Scope, endpoint string, startedAt time.Time) *RunHandle {
	return &RunHandle{
		ID:        id,
		Scope:     scope,
		StartedAt: startedAt,
		outcome:   RunOutcome{Endpoint: endpoint},
	}
}

// SetEndpoint records the endpoint or strategy the adapter actually used.
func (h *RunHandle) SetEndpoint(endpoint string) {
	h.mu.Lock()
	h.outcome.Endpoint = endpoint
	h.mu.Unlock()
}

// SetFetched records how many raw records the adapter returned.
func (h *RunHandle) SetFetched(n int) {
	h.mu.Lock()
	h.outcome.Fetched = n
	h.mu.Unlock()
}

// SetCounts records the reconciliation delta.
func (h *RunHandle) SetCounts(c Counts) {
	h.mu.Lock()
	h.outcome.Counts = c
	h.mu.Unlock()
}

// Outcome returns a copy of what has been recorded so far.
func (h *RunHandle) Outcome() RunOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// MarkFinished flips the handle to finished. It returns false if it already was.
func (h *RunHandle) MarkFinished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return false
	}
	h.finished = true
	return true
}

// Ledger persists one entry per reconciliation invocation.
type Ledger interface {
	// Start opens an entry with status running.
	Start(ctx context.Context, scope Scope, endpoint string) (*RunHandle, error)
	// Finish closes the entry with the handle's outcome. A second call returns ErrRunFinished.
	Finish(ctx context.Context, h *RunHandle, status RunStatus, errMsg string) error
}

// Track opens a ledger entry, runs fn and finalizes the entry exactly once,
// also when fn panics or ctx is cancelled. A panic is recorded and re-raised.
func Track(ctx context.Context, ledger Ledger, scope Scope, endpoint string, fn func(ctx context.Context, run *RunHandle) error) (err error) {
	run, err := ledger.Start(ctx, scope, endpoint)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}

	// Finalization must survive the caller's cancellation.
	finishCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			_ = ledger.Finish(finishCtx, run, RunError, fmt.Sprintf("panic: %v", r))
			panic(r)
		}

		status, msg := RunSuccess, ""
		if err != nil {
			status, msg = RunError, err.Error()
		}
		if ferr := ledger.Finish(finishCtx, run, status, msg); ferr != nil && err == nil {
			err = fmt.Errorf("finish run: %w", ferr)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, run)
}
