package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	started int
	stopped int
	reads   int64
	value   any
}

func (f *fakeSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return nil
}

func (f *fakeSource) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeSource) Read(ctx context.Context) (any, error) {
	atomic.AddInt64(&f.reads, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, nil
}

func TestBaseSource_PausedReadsButDoesNotPush(t *testing.T) {
	fs := &fakeSource{value: "block"}
	src := NewBaseSource("Test", "src", fs)

	var pushed []any
	tap := NewPort("tap")
	tap.SetChainCallback(func(ctx context.Context, portName string, data any) error {
		pushed = append(pushed, data)
		return nil
	})
	require.NoError(t, src.Out().Link(tap))

	require.NoError(t, SetState(context.Background(), src, StatePaused))
	ok := assertEventually(t, func() bool { return atomic.LoadInt64(&fs.reads) > 2 })
	require.True(t, ok)

	assert.Empty(t, pushed, "PAUSED must read without pushing")
	require.NoError(t, SetState(context.Background(), src, StateNull))
}

func TestBaseSource_RunningReadsAndPushes(t *testing.T) {
	fs := &fakeSource{value: "go"}
	src := NewBaseSource("Test", "src", fs)

	var pushed []any
	var mu sync.Mutex
	tap := NewPort("tap")
	tap.SetChainCallback(func(ctx context.Context, portName string, data any) error {
		mu.Lock()
		pushed = append(pushed, data)
		mu.Unlock()
		return nil
	})
	require.NoError(t, src.Out().Link(tap))

	require.NoError(t, SetState(context.Background(), src, StateRunning))
	ok := assertEventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushed) > 2
	})
	require.True(t, ok)
	require.NoError(t, SetState(context.Background(), src, StateNull))

	mu.Lock()
	defer mu.Unlock()
	for _, v := range pushed {
		assert.Equal(t, "go", v)
	}
}

func TestBaseSource_NilReadIsSwallowed(t *testing.T) {
	fs := &fakeSource{value: nil}
	src := NewBaseSource("Test", "src", fs)

	var pushed []any
	tap := NewPort("tap")
	tap.SetChainCallback(func(ctx context.Context, portName string, data any) error {
		pushed = append(pushed, data)
		return nil
	})
	require.NoError(t, src.Out().Link(tap))

	require.NoError(t, SetState(context.Background(), src, StateRunning))
	assertEventually(t, func() bool { return atomic.LoadInt64(&fs.reads) > 2 })
	require.NoError(t, SetState(context.Background(), src, StateNull))

	assert.Empty(t, pushed)
}

func TestBaseSource_StartStopCalledOnActivateBoundary(t *testing.T) {
	fs := &fakeSource{}
	src := NewBaseSource("Test", "src", fs)

	require.NoError(t, SetState(context.Background(), src, StatePaused))
	require.NoError(t, SetState(context.Background(), src, StateNull))

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, 1, fs.started)
	assert.Equal(t, 1, fs.stopped)
}
