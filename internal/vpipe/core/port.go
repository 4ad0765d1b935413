package core

import (
	"context"
	"fmt"
	"sync"
)

// InputHandler processes data arriving on a capsule's input port.
type InputHandler func(ctx context.Context, portName string, data any) error

// ActivateHandler reacts to a port's owning capsule entering or leaving an
// active state (READY<->PAUSED for most capsules).
type ActivateHandler func(ctx context.Context, active bool) error

// InputProvider is satisfied by anything exposing a named input port — every
// Capsule, and Composites exposing a child's port under an alias. Port.Link
// accepts either a *Port or an InputProvider, matching the original's
// link() duck-typing against "has an 'in' input port".
type InputProvider interface {
	GetInput(name string) (*Port, bool)
}

// Port is a typed link point on a capsule: it can be pushed data, chained
// through a handler, fanned out to one or more linked targets, and owns at
// most one background Task (a source's read loop, a queue's drain loop).
// Grounded on original_source/vpipe/core/port.py.
type Port struct {
	*Object

	mu              sync.Mutex
	targets         []*Port
	chainCallback   InputHandler
	activateHandler ActivateHandler
	task            *Task
}

// NewPort creates a named, unconnected port.
func NewPort(name string) *Port {
	return &Port{Object: NewObject("Port", name)}
}

// SetChainCallback installs the handler invoked on every Push before
// fan-out to linked targets.
func (p *Port) SetChainCallback(cb InputHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainCallback = cb
}

// SetActivateHandler installs the handler invoked on Activate.
func (p *Port) SetActivateHandler(h ActivateHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activateHandler = h
}

// Link connects this port to another port, or to a capsule exposing an
// input port named "in". Fan-out order follows link order.
func (p *Port) Link(target any) error {
	switch t := target.(type) {
	case *Port:
		p.mu.Lock()
		p.targets = append(p.targets, t)
		p.mu.Unlock()
		p.EmitSignal("target_linked", t)
		return nil
	case InputProvider:
		in, ok := t.GetInput("in")
		if !ok {
			return fmt.Errorf("vpipe: link target has no input port named \"in\"")
		}
		p.mu.Lock()
		p.targets = append(p.targets, in)
		p.mu.Unlock()
		p.EmitSignal("target_linked", in)
		return nil
	default:
		return fmt.Errorf("vpipe: link target must be a *Port or a capsule with an \"in\" input port")
	}
}

// Unlink removes a previously linked target port, if present.
func (p *Port) Unlink(target *Port) {
	p.mu.Lock()
	var removed bool
	for i, t := range p.targets {
		if t == target {
			p.targets = append(p.targets[:i], p.targets[i+1:]...)
			removed = true
			break
		}
	}
	p.mu.Unlock()
	if removed {
		p.EmitSignal("target_unlinked", target)
	}
}

// Push runs the chain callback (if any) then forwards data to every linked
// target in link order, serialized in the caller's goroutine — matching the
// original's sequential await loop so push ordering is deterministic.
func (p *Port) Push(ctx context.Context, data any) error {
	p.mu.Lock()
	cb := p.chainCallback
	p.mu.Unlock()

	if cb != nil {
		if err := cb(ctx, p.Name(), data); err != nil {
			return err
		}
	}

	p.mu.Lock()
	targets := make([]*Port, len(p.targets))
	copy(targets, p.targets)
	p.mu.Unlock()

	for _, t := range targets {
		if err := t.Push(ctx, data); err != nil {
			return err
		}
	}
	p.EmitSignal("data_pushed", data)
	return nil
}

// Activate runs the port's activation handler, if any.
func (p *Port) Activate(ctx context.Context, active bool) error {
	p.mu.Lock()
	h := p.activateHandler
	p.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(ctx, active)
}

// StartTask spawns fn as the port's owned background task, stopping any
// previously owned task first.
func (p *Port) StartTask(fn TaskFunc) {
	p.mu.Lock()
	prev := p.task
	t := NewTask(fn)
	t.SetParent(p)
	p.task = t
	p.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	t.Start()
}

// StopTask stops and releases the port's owned task, if any.
func (p *Port) StopTask() {
	p.mu.Lock()
	t := p.task
	p.task = nil
	p.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

// Task returns the port's currently owned task, if any.
func (p *Port) Task() *Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.task
}

// Targets returns a snapshot of the ports currently linked from this one.
func (p *Port) Targets() []*Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Port, len(p.targets))
	copy(out, p.targets)
	return out
}
