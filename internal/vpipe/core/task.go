package core

import (
	"context"
	"sync"
	"time"
)

// TaskState mirrors the Stopped/Started/Paused lifecycle of
// original_source/vpipe/core/task.py's VpTask.
type TaskState int

const (
	TaskStopped TaskState = iota
	TaskStarted
	TaskPaused
)

func (s TaskState) String() string {
	switch s {
	case TaskStopped:
		return "stopped"
	case TaskStarted:
		return "started"
	case TaskPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// TaskFunc runs one iteration of a task's work, given a context cancelled
// when the task is stopped. Returning a non-nil error (other than context
// cancellation) is logged and the loop continues — a long-running source or
// drain loop should stay alive across a single failed read/write, the same
// tolerance original_source gives an unhandled per-iteration exception.
type TaskFunc func(ctx context.Context) error

// Task is vpipe's unit of background work: a goroutine driven by a small
// state machine (Stopped/Started/Paused) instead of asyncio's task handle.
// Grounded on original_source/vpipe/core/task.py.
type Task struct {
	*Object

	mu     sync.Mutex
	fn     TaskFunc
	state  TaskState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a stopped task wrapping fn.
func NewTask(fn TaskFunc) *Task {
	return &Task{Object: NewObject("Task", "task"), fn: fn, state: TaskStopped}
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start transitions the task to Started, spawning its goroutine if it
// wasn't already running.
func (t *Task) Start() {
	t.setState(TaskStarted)
}

// Pause transitions the task to Paused: the goroutine keeps running but
// skips calling fn until Resume.
func (t *Task) Pause() {
	t.setState(TaskPaused)
}

// Resume is an alias for Start, returning a paused task to active work.
func (t *Task) Resume() {
	t.setState(TaskStarted)
}

// Stop cancels the task's goroutine and waits for it to exit.
func (t *Task) Stop() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	t.setState(TaskStopped)
	if done != nil {
		<-done
	}
}

func (t *Task) setState(next TaskState) {
	t.mu.Lock()
	prev := t.state
	if prev == next {
		t.mu.Unlock()
		return
	}
	t.state = next

	switch next {
	case TaskStarted:
		if prev == TaskStopped {
			ctx, cancel := context.WithCancel(context.Background())
			t.cancel = cancel
			done := make(chan struct{})
			t.done = done
			t.mu.Unlock()
			go t.loop(ctx, done)
			t.EmitSignal("state_changed", prev, next)
			return
		}
	case TaskStopped:
		cancel := t.cancel
		t.cancel = nil
		t.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		t.EmitSignal("state_changed", prev, next)
		return
	}
	t.mu.Unlock()
	t.EmitSignal("state_changed", prev, next)
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.mu.Lock()
		st := t.state
		t.mu.Unlock()

		switch st {
		case TaskStopped:
			return
		case TaskPaused:
			select {
			case <-ctx.Done():
				return
			case <-time.After(25 * time.Millisecond):
			}
		case TaskStarted:
			if err := t.fn(ctx); err != nil && ctx.Err() == nil {
				t.Logger().Error("task iteration failed", "err", err)
			}
		}
	}
}
