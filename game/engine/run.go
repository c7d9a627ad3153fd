package engine

import (
	"context"
	"time"
)

// Run is the handle of a generation or search running on a worker goroutine
type Run struct {
	Kind      RunKind
	Algorithm string
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
	result RunResult
}

func newRun(kind RunKind, algorithm string, cancel context.CancelFunc) *Run {
	return &Run{
		Kind:      kind,
		Algorithm: algorithm,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Done is closed when the run has finished
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its result
func (r *Run) Wait() RunResult {
	<-r.done
	return r.result
}

// WaitContext is Wait bounded by ctx
func (r *Run) WaitContext(ctx context.Context) (RunResult, error) {
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}
}

// Result returns the result if the run has finished
func (r *Run) Result() (RunResult, bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return RunResult{}, false
	}
}

// Cancel stops the run. The result reports Cancelled once the worker exits.
func (r *Run) Cancel() {
	r.cancel()
}

func (r *Run) complete(result RunResult) {
	r.result = result
	close(r.done)
}
