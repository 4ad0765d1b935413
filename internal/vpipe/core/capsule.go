package core

import (
	"context"
	"sync"
	"time"
)

// State is one of the four capsule lifecycle states. Grounded on
// original_source/vpipe/core/capsule.py and spec.md §3.
type State int

const (
	StateNull State = iota
	StateReady
	StatePaused
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// stateOrder is the NULL < READY < PAUSED < RUNNING ladder SetState walks
// one adjacent step at a time in either direction.
var stateOrder = []State{StateNull, StateReady, StatePaused, StateRunning}

func stateIndex(s State) int {
	for i, v := range stateOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Transition names one of the six adjacent state changes a capsule accepts.
type Transition struct {
	From State
	To   State
}

var (
	NullToReady    = Transition{StateNull, StateReady}
	ReadyToNull    = Transition{StateReady, StateNull}
	ReadyToPaused  = Transition{StateReady, StatePaused}
	PausedToReady  = Transition{StatePaused, StateReady}
	PausedToRun    = Transition{StatePaused, StateRunning}
	RunToPaused    = Transition{StateRunning, StatePaused}
)

func transitionBetween(from, to State) Transition {
	return Transition{From: from, To: to}
}

// Capsule is the interface every pipeline element satisfies: named,
// stateful, bus-attached, and exposing its input/output ports. SetState
// dispatches ChangeState through this interface so a Composite's override
// is honored even when called generically.
type Capsule interface {
	Named
	State() State
	ChangeState(ctx context.Context, t Transition) error
	GetInput(name string) (*Port, bool)
	GetOutput(name string) (*Port, bool)
	SetBus(b *Bus)
	Bus() *Bus
}

// SetState drives c from its current state to target, one adjacent
// transition at a time, stopping on the first error. Grounded on
// original_source/vpipe/core/capsule.py's set_state, which walks the same
// ladder.
func SetState(ctx context.Context, c Capsule, target State) error {
	ci, ti := stateIndex(c.State()), stateIndex(target)
	if ci < 0 || ti < 0 {
		return &StateError{Capsule: c.Path(), From: c.State(), To: target}
	}
	if ci == ti {
		return nil
	}
	step := 1
	if ti < ci {
		step = -1
	}
	for i := ci; i != ti; i += step {
		from, to := stateOrder[i], stateOrder[i+step]
		if err := c.ChangeState(ctx, transitionBetween(from, to)); err != nil {
			return err
		}
	}
	return nil
}

// PortActivator activates or deactivates a capsule's ports on the
// READY<->PAUSED boundary. BaseCapsule's default activates every
// registered input/output port; Composite overrides it to a no-op since a
// composite's ports are just aliases into its children.
type PortActivator func(ctx context.Context, active bool) error

// BaseCapsule implements the common Capsule machinery: port registries,
// state storage, bus wiring and the six-transition state machine. Concrete
// capsules (Queue, Fork, BaseSource, BaseSink, BaseTransform) embed it.
// Grounded on original_source/vpipe/core/capsule.py.
type BaseCapsule struct {
	*Object

	mu          sync.RWMutex
	inputs      map[string]*Port
	inputOrder  []string
	outputs     map[string]*Port
	outputOrder []string
	state       State
	bus         *Bus

	activate PortActivator
}

// NewBaseCapsule creates a capsule in state NULL with empty port registries.
func NewBaseCapsule(kind, name string) *BaseCapsule {
	c := &BaseCapsule{
		Object:  NewObject(kind, name),
		inputs:  make(map[string]*Port),
		outputs: make(map[string]*Port),
		state:   StateNull,
	}
	c.activate = c.defaultActivatePorts
	return c
}

func (c *BaseCapsule) defaultActivatePorts(ctx context.Context, active bool) error {
	c.mu.RLock()
	ports := make([]*Port, 0, len(c.inputs)+len(c.outputs))
	for _, name := range c.inputOrder {
		ports = append(ports, c.inputs[name])
	}
	for _, name := range c.outputOrder {
		ports = append(ports, c.outputs[name])
	}
	c.mu.RUnlock()
	for _, p := range ports {
		if err := p.Activate(ctx, active); err != nil {
			return err
		}
	}
	return nil
}

// registerInput stores a port under the input registry, preserving
// registration order.
func (c *BaseCapsule) registerInput(name string, p *Port) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.inputs[name]; !exists {
		c.inputOrder = append(c.inputOrder, name)
	}
	c.inputs[name] = p
}

// registerOutput stores a port under the output registry, preserving
// registration order.
func (c *BaseCapsule) registerOutput(name string, p *Port) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.outputs[name]; !exists {
		c.outputOrder = append(c.outputOrder, name)
	}
	c.outputs[name] = p
}

// AddInput creates, registers and returns a new input port, wiring handler
// (if non-nil) as its chain callback.
func (c *BaseCapsule) AddInput(name string, handler InputHandler) *Port {
	p := NewPort(name)
	p.SetParent(c)
	if handler != nil {
		p.SetChainCallback(handler)
	}
	c.registerInput(name, p)
	return p
}

// AddOutput creates, registers and returns a new output port.
func (c *BaseCapsule) AddOutput(name string) *Port {
	p := NewPort(name)
	p.SetParent(c)
	c.registerOutput(name, p)
	return p
}

// GetInput returns a previously registered input port by name.
func (c *BaseCapsule) GetInput(name string) (*Port, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.inputs[name]
	return p, ok
}

// GetOutput returns a previously registered output port by name.
func (c *BaseCapsule) GetOutput(name string) (*Port, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.outputs[name]
	return p, ok
}

// State returns the capsule's current lifecycle state.
func (c *BaseCapsule) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Bus returns the bus this capsule posts messages to, or nil if unattached.
func (c *BaseCapsule) Bus() *Bus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bus
}

// SetBus attaches the capsule to a bus for message posting.
func (c *BaseCapsule) SetBus(b *Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = b
}

// PostMessage posts msg to the capsule's bus, if attached.
func (c *BaseCapsule) PostMessage(kind string, payload any) {
	b := c.Bus()
	if b == nil {
		return
	}
	b.Post(Message{Kind: kind, Payload: payload, Source: c, Timestamp: time.Now()})
}

func (c *BaseCapsule) setState(next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()
	if prev == next {
		return
	}
	c.EmitSignal("state_changed", prev, next)
	c.PostMessage("state_changed", struct{ Old, New State }{prev, next})
}

// ChangeState applies one adjacent transition: activating or deactivating
// ports on the READY<->PAUSED boundary, otherwise just moving the state.
// Concrete capsules other than Composite use this unmodified; Composite
// overrides it to drive children first.
func (c *BaseCapsule) ChangeState(ctx context.Context, t Transition) error {
	cur := c.State()
	if cur != t.From {
		return &StateError{Capsule: c.Path(), From: cur, To: t.To}
	}
	switch t {
	case ReadyToPaused:
		if err := c.activate(ctx, true); err != nil {
			return err
		}
	case PausedToReady, ReadyToNull:
		if err := c.activate(ctx, false); err != nil {
			return err
		}
	case NullToReady, PausedToRun, RunToPaused:
		// no port (de)activation on these boundaries
	default:
		return &StateError{Capsule: c.Path(), From: t.From, To: t.To}
	}
	c.setState(t.To)
	return nil
}

// setActivator overrides the port-activation hook; used by Composite to
// make its own port aliases a no-op (its children's ports already drive
// their own activation).
func (c *BaseCapsule) setActivator(a PortActivator) {
	c.activate = a
}
