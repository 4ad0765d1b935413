// Package asyncloop provides a dedicated-goroutine bridge so foreign
// goroutines can submit work to run serialized on one owner goroutine and
// await its result — the Go analogue of the original's AsyncLoopThread,
// which runs a dedicated asyncio event loop on its own OS thread and
// exposes run_coroutine_threadsafe/wrap_future for cross-thread submission.
// Grounded on original_source/app/controller/async_loop_thread.py.
package asyncloop

import (
	"context"
	"fmt"
)

type job struct {
	fn     func(ctx context.Context) (any, error)
	result chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// Bridge owns a single worker goroutine; every submitted job runs there, in
// submission order, so pipeline state it touches never needs its own lock.
type Bridge struct {
	jobs   chan job
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts the bridge's worker goroutine.
func New() *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		jobs:   make(chan job, 64),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go b.run(ctx)
	return b
}

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-b.jobs:
			value, err := j.fn(ctx)
			j.result <- jobResult{value: value, err: err}
		}
	}
}

// Submit schedules fn to run on the bridge's worker goroutine and returns a
// channel the caller can receive the result from. Submitting after Close
// returns an already-closed, error-carrying channel instead of blocking
// forever.
func (b *Bridge) Submit(fn func(ctx context.Context) (any, error)) <-chan jobResult {
	out := make(chan jobResult, 1)
	select {
	case <-b.done:
		out <- jobResult{err: fmt.Errorf("asyncloop: bridge is closed")}
		close(out)
		return out
	default:
	}
	b.jobs <- job{fn: fn, result: out}
	return out
}

// SubmitAndWait schedules fn and blocks the calling goroutine until it
// completes or ctx is done, matching the original's
// wrap_future(run_coroutine_threadsafe(...)).result() pattern.
func (b *Bridge) SubmitAndWait(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	resultCh := b.Submit(fn)
	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker goroutine and waits for it to exit.
func (b *Bridge) Close() {
	b.cancel()
	<-b.done
}
