package core

import (
	"context"
	"fmt"
	"sync"
)

// Fork fans a single input out to any number of dynamically added output
// ports, pushing to each in addition order. Grounded on
// original_source/vpipe/core/fork.py.
type Fork struct {
	*BaseCapsule

	mu   sync.Mutex
	outs []*Port
}

// NewFork creates a fork with a single "in" input and no outputs yet.
func NewFork(name string) *Fork {
	f := &Fork{BaseCapsule: NewBaseCapsule("Fork", name)}
	f.AddInput("in", f.handleInput)
	return f
}

func (f *Fork) handleInput(ctx context.Context, _ string, data any) error {
	f.mu.Lock()
	outs := make([]*Port, len(f.outs))
	copy(outs, f.outs)
	f.mu.Unlock()
	for _, o := range outs {
		if err := o.Push(ctx, data); err != nil {
			return err
		}
	}
	return nil
}

// ForkOutput creates and returns a new output branch. An empty name is
// replaced with "out<N>".
func (f *Fork) ForkOutput(name string) *Port {
	f.mu.Lock()
	if name == "" {
		name = fmt.Sprintf("out%d", len(f.outs))
	}
	f.mu.Unlock()
	p := f.AddOutput(name)
	f.mu.Lock()
	f.outs = append(f.outs, p)
	f.mu.Unlock()
	return p
}
