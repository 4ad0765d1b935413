package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite_AddsPreserveOrder(t *testing.T) {
	c := NewComposite("Test", "root")
	a := NewBaseCapsule("Test", "a")
	b := NewBaseCapsule("Test", "b")
	cc := NewBaseCapsule("Test", "c")
	c.Adds(a, b, cc)

	children := c.Children()
	require.Len(t, children, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{children[0].Name(), children[1].Name(), children[2].Name()})
}

func TestComposite_ChangeStateDrivesChildrenFirst(t *testing.T) {
	c := NewComposite("Test", "root")
	child := NewBaseCapsule("Test", "child")
	c.Add(child)

	require.NoError(t, SetState(context.Background(), c, StateReady))
	assert.Equal(t, StateReady, child.State())
	assert.Equal(t, StateReady, c.State())
}

func TestComposite_BubblesSubBusMessagesToParentBus(t *testing.T) {
	c := NewComposite("Test", "root")
	bus := NewBus("parent")
	c.SetBus(bus)

	child := NewBaseCapsule("Test", "child")
	c.Add(child)

	var got Message
	bus.AddWatch(func(m Message) { got = m })
	child.PostMessage("ping", "hello")

	assert.Equal(t, "ping", got.Kind)
	assert.Equal(t, "hello", got.Payload)
}

func TestComposite_GetCapsuleLooksUpByName(t *testing.T) {
	c := NewComposite("Test", "root")
	child := NewBaseCapsule("Test", "child")
	c.Add(child)

	found, ok := c.GetCapsule("child")
	assert.True(t, ok)
	assert.Same(t, Capsule(child), found)

	_, ok = c.GetCapsule("missing")
	assert.False(t, ok)
}

func TestComposite_ExposedPortsAliasChildPorts(t *testing.T) {
	c := NewComposite("Test", "root")
	child := NewBaseCapsule("Test", "child")
	in := child.AddInput("in", nil)
	out := child.AddOutput("out")
	c.Add(child)

	c.ExposeInput("in", in)
	c.ExposeOutput("out", out)

	gotIn, ok := c.GetInput("in")
	assert.True(t, ok)
	assert.Same(t, in, gotIn)

	gotOut, ok := c.GetOutput("out")
	assert.True(t, ok)
	assert.Same(t, out, gotOut)
}
