package core

import (
	"context"
	"sync"
)

// SourceOps is implemented by a concrete source (FileSource, MicSource,
// VirtualSpeakerSource...) and supplied to NewBaseSource, giving BaseSource
// its "virtual" Start/Stop/Read without Go subclassing. Read returning
// (nil, nil) means "no data this tick" (e.g. EOF, a starved device); a
// non-nil error is logged by the owning port's task and the loop continues,
// matching original_source's tolerance for a single failed read.
type SourceOps interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Read(ctx context.Context) (any, error)
}

// BaseSource is the standard capsule shape for anything that produces data
// on its own schedule: one "out" port, activated/deactivated with the
// capsule's READY<->PAUSED boundary, running a read loop as the port's
// owned task while active. In PAUSED it keeps reading (so an underlying
// device doesn't stall or overflow its buffer) but never pushes; in
// RUNNING it reads and pushes. Grounded on
// original_source/vpipe/core/basesrc.py.
type BaseSource struct {
	*BaseCapsule

	ops SourceOps
	mu  sync.Mutex
	out *Port
}

// NewBaseSource wires ops as the source's Start/Stop/Read implementation.
func NewBaseSource(kind, name string, ops SourceOps) *BaseSource {
	s := &BaseSource{BaseCapsule: NewBaseCapsule(kind, name), ops: ops}
	s.out = s.AddOutput("out")
	s.out.SetActivateHandler(s.portActive)
	return s
}

// Out returns the source's single output port.
func (s *BaseSource) Out() *Port { return s.out }

func (s *BaseSource) portActive(ctx context.Context, active bool) error {
	if active {
		s.mu.Lock()
		err := s.ops.Start(ctx)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.out.StartTask(s.srcLoop)
		return nil
	}
	s.out.StopTask()
	s.mu.Lock()
	err := s.ops.Stop(context.Background())
	s.mu.Unlock()
	return err
}

func (s *BaseSource) srcLoop(ctx context.Context) error {
	st := s.State()
	if st != StatePaused && st != StateRunning {
		return nil
	}
	s.mu.Lock()
	data, err := s.ops.Read(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if s.State() == StateRunning {
		return s.out.Push(ctx, data)
	}
	return nil
}
