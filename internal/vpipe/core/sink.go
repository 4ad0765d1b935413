package core

import (
	"context"
	"sync"
)

// SinkOps is implemented by a concrete sink (SpeakerSink,
// VirtualMicSink...) and supplied to NewBaseSink.
type SinkOps interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Write(ctx context.Context, data any) error
}

// BaseSink is the standard capsule shape for anything that consumes data
// pushed to its "in" port and has no output: a device write, a file write,
// a transcript append. Grounded on
// original_source/vpipe/core/audiosink.py (the original names its only
// sink base class after audio, but the shape generalizes to any consumer).
type BaseSink struct {
	*BaseCapsule

	ops SinkOps
	mu  sync.Mutex
	in  *Port
}

// NewBaseSink wires ops as the sink's Open/Close/Write implementation.
func NewBaseSink(kind, name string, ops SinkOps) *BaseSink {
	s := &BaseSink{BaseCapsule: NewBaseCapsule(kind, name), ops: ops}
	s.in = s.AddInput("in", s.handleInput)
	s.in.SetActivateHandler(s.portActive)
	return s
}

// In returns the sink's single input port.
func (s *BaseSink) In() *Port { return s.in }

func (s *BaseSink) portActive(ctx context.Context, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		return s.ops.Open(ctx)
	}
	return s.ops.Close(context.Background())
}

func (s *BaseSink) handleInput(ctx context.Context, _ string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops.Write(ctx, data)
}
