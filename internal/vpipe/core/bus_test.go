package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PostNotifiesWatchersSynchronously(t *testing.T) {
	b := NewBus("b")
	var got Message
	b.AddWatch(func(m Message) { got = m })

	b.Post(Message{Kind: "ping", Payload: 1})
	assert.Equal(t, "ping", got.Kind)
}

func TestBus_RemoveWatchStopsDelivery(t *testing.T) {
	b := NewBus("b")
	var calls int
	id := b.AddWatch(func(m Message) { calls++ })
	b.RemoveWatch(id)

	b.Post(Message{Kind: "x"})
	assert.Equal(t, 0, calls)
}

func TestBus_PollReturnsPostedMessage(t *testing.T) {
	b := NewBus("b")
	b.Post(Message{Kind: "hello"})

	m, ok := b.Poll(context.Background())
	require.True(t, ok)
	assert.Equal(t, "hello", m.Kind)
}

func TestBus_PollTimeoutExpiresWithoutMessage(t *testing.T) {
	b := NewBus("b")
	_, ok := b.PollTimeout(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestBus_PollUnblocksOnContextCancel(t *testing.T) {
	b := NewBus("b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := b.Poll(ctx)
	assert.False(t, ok)
}
