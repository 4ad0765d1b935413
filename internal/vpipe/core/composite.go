package core

import (
	"context"
	"sync"
)

// Composite is an ordered container of child capsules sharing a sub-bus
// that bubbles every message up to the composite's own bus. Its ports are
// aliases into a child's real ports, so activating them is a no-op: the
// child's own ChangeState call (driven before the composite's) already
// activated the real port. Grounded on
// original_source/vpipe/core/composite.py.
type Composite struct {
	*BaseCapsule

	mu       sync.Mutex
	children []Capsule
	subBus   *Bus
}

// NewComposite creates an empty composite with a freshly instantiated
// sub-bus.
func NewComposite(kind, name string) *Composite {
	c := &Composite{BaseCapsule: NewBaseCapsule(kind, name)}
	c.subBus = NewBus(name + "-sub-bus")
	c.subBus.AddWatch(func(m Message) {
		b := c.Bus()
		if b != nil {
			b.Post(m)
		}
	})
	c.setActivator(func(ctx context.Context, active bool) error { return nil })
	return c
}

// Add appends a child capsule, attaching it to the composite's sub-bus.
func (c *Composite) Add(child Capsule) {
	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
	child.SetBus(c.subBus)
}

// Adds appends multiple children in order.
func (c *Composite) Adds(children ...Capsule) {
	for _, ch := range children {
		c.Add(ch)
	}
}

// Children returns a snapshot of the composite's children in add order.
func (c *Composite) Children() []Capsule {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Capsule, len(c.children))
	copy(out, c.children)
	return out
}

// GetCapsule looks up a direct child by name.
func (c *Composite) GetCapsule(name string) (Capsule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.children {
		if ch.Name() == name {
			return ch, true
		}
	}
	return nil, false
}

// SubBus returns the composite's internal child-facing bus.
func (c *Composite) SubBus() *Bus {
	return c.subBus
}

// ExposeInput aliases a child's input port as one of the composite's own,
// so external callers can Link into the composite directly.
func (c *Composite) ExposeInput(name string, p *Port) {
	c.registerInput(name, p)
}

// ExposeOutput aliases a child's output port as one of the composite's own.
func (c *Composite) ExposeOutput(name string, p *Port) {
	c.registerOutput(name, p)
}

// ChangeState drives every child to the transition's target state before
// applying the composite's own state change, so a composite's state always
// reflects the union of its children having already reached it. Grounded
// on original_source/vpipe/core/composite.py's change_state override.
func (c *Composite) ChangeState(ctx context.Context, t Transition) error {
	c.mu.Lock()
	children := make([]Capsule, len(c.children))
	copy(children, c.children)
	c.mu.Unlock()

	for _, ch := range children {
		if err := SetState(ctx, ch, t.To); err != nil {
			return err
		}
	}
	return c.BaseCapsule.ChangeState(ctx, t)
}
