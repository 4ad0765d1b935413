package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetState_WalksLadderOneStepAtATime(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	var seen []Transition
	c.activate = func(ctx context.Context, active bool) error { return nil }

	// wrap ChangeState via a thin capsule to observe transitions
	wrapped := &recordingCapsule{BaseCapsule: c, seen: &seen}

	require.NoError(t, SetState(context.Background(), wrapped, StateRunning))
	assert.Equal(t, []Transition{NullToReady, ReadyToPaused, PausedToRun}, seen)
	assert.Equal(t, StateRunning, c.State())
}

func TestSetState_NoopWhenAlreadyAtTarget(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	require.NoError(t, SetState(context.Background(), c, StateNull))
	assert.Equal(t, StateNull, c.State())
}

func TestSetState_WalksDownward(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	require.NoError(t, SetState(context.Background(), c, StateRunning))
	require.NoError(t, SetState(context.Background(), c, StateNull))
	assert.Equal(t, StateNull, c.State())
}

func TestBaseCapsule_ChangeStateRejectsWrongFrom(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	err := c.ChangeState(context.Background(), PausedToRun)
	require.Error(t, err)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestBaseCapsule_PortsActivateOnReadyPausedBoundary(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	in := c.AddInput("in", nil)
	var activated []bool
	in.SetActivateHandler(func(ctx context.Context, active bool) error {
		activated = append(activated, active)
		return nil
	})

	require.NoError(t, SetState(context.Background(), c, StatePaused))
	require.NoError(t, SetState(context.Background(), c, StateNull))
	assert.Equal(t, []bool{true, false}, activated)
}

func TestBaseCapsule_GetInputOutputRegistryOrder(t *testing.T) {
	c := NewBaseCapsule("Test", "t1")
	c.AddInput("a", nil)
	c.AddInput("b", nil)
	c.AddOutput("x")

	_, ok := c.GetInput("a")
	assert.True(t, ok)
	_, ok = c.GetInput("missing")
	assert.False(t, ok)
	_, ok = c.GetOutput("x")
	assert.True(t, ok)
}

// recordingCapsule wraps a *BaseCapsule to record each transition
// ChangeState is asked to perform, so SetState's step-by-step walk can be
// asserted directly.
type recordingCapsule struct {
	*BaseCapsule
	seen *[]Transition
}

func (r *recordingCapsule) ChangeState(ctx context.Context, t Transition) error {
	*r.seen = append(*r.seen, t)
	return r.BaseCapsule.ChangeState(ctx, t)
}
