package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	opened  int
	closed  int
	written []any
}

func (f *fakeSink) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return nil
}

func (f *fakeSink) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSink) Write(ctx context.Context, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func TestBaseSink_OpenCloseOnActivateBoundary(t *testing.T) {
	fs := &fakeSink{}
	sink := NewBaseSink("Test", "sink", fs)

	require.NoError(t, SetState(context.Background(), sink, StatePaused))
	fs.mu.Lock()
	assert.Equal(t, 1, fs.opened)
	fs.mu.Unlock()

	require.NoError(t, SetState(context.Background(), sink, StateNull))
	fs.mu.Lock()
	assert.Equal(t, 1, fs.closed)
	fs.mu.Unlock()
}

func TestBaseSink_PushedDataReachesWrite(t *testing.T) {
	fs := &fakeSink{}
	sink := NewBaseSink("Test", "sink", fs)

	require.NoError(t, sink.In().Push(context.Background(), "payload"))
	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, []any{"payload"}, fs.written)
}
