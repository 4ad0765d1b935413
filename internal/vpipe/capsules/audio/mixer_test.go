package audio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func TestMixer_AveragesInputsInLockStep(t *testing.T) {
	m := NewMixer("mix", 1)
	a := m.AddMixInput("a")
	b := m.AddMixInput("b")

	var got *core.PCM
	var mu sync.Mutex
	out, ok := m.GetOutput("out")
	require.True(t, ok)
	out.SetChainCallback(func(ctx context.Context, _ string, data any) error {
		mu.Lock()
		got = data.(*core.PCM)
		mu.Unlock()
		return nil
	})
	require.NoError(t, out.Activate(context.Background(), true))
	defer out.StopTask()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		require.NoError(t, a.Push(context.Background(), &core.PCM{Samples: []int16{100, 200}, Channels: 1}))
	}()
	go func() {
		defer wg.Done()
		require.NoError(t, b.Push(context.Background(), &core.PCM{Samples: []int16{10, 20}, Channels: 1}))
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int16{55, 110}, got.Samples)
}

func TestMixer_MuteZeroesInputButStillCountsTowardMean(t *testing.T) {
	m := NewMixer("mix", 1)
	a := m.AddMixInput("a")
	b := m.AddMixInput("b")
	m.SetInputMute("b", true)

	out, ok := m.GetOutput("out")
	require.True(t, ok)
	var got *core.PCM
	var mu sync.Mutex
	out.SetChainCallback(func(ctx context.Context, _ string, data any) error {
		mu.Lock()
		got = data.(*core.PCM)
		mu.Unlock()
		return nil
	})
	require.NoError(t, out.Activate(context.Background(), true))
	defer out.StopTask()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		require.NoError(t, a.Push(context.Background(), &core.PCM{Samples: []int16{100}, Channels: 1}))
	}()
	go func() {
		defer wg.Done()
		require.NoError(t, b.Push(context.Background(), &core.PCM{Samples: []int16{9999}, Channels: 1}))
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int16{50}, got.Samples)
}

func TestMixer_VolumeScalesInputBeforeAveraging(t *testing.T) {
	m := NewMixer("mix", 1)
	a := m.AddMixInput("a")
	b := m.AddMixInput("b")
	m.SetInputVolume("b", 0.5)

	out, ok := m.GetOutput("out")
	require.True(t, ok)
	var got *core.PCM
	var mu sync.Mutex
	out.SetChainCallback(func(ctx context.Context, _ string, data any) error {
		mu.Lock()
		got = data.(*core.PCM)
		mu.Unlock()
		return nil
	})
	require.NoError(t, out.Activate(context.Background(), true))
	defer out.StopTask()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		require.NoError(t, a.Push(context.Background(), &core.PCM{Samples: []int16{0}, Channels: 1}))
	}()
	go func() {
		defer wg.Done()
		require.NoError(t, b.Push(context.Background(), &core.PCM{Samples: []int16{100}, Channels: 1}))
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int16{25}, got.Samples)
}

// With the mixer task never started (output port inactive), handleInput's
// only blocking condition is its own slot already being full: a second
// push to the same input before a round drains it must block, and unblock
// when the caller's context is cancelled.
func TestMixer_HandleInputBlocksOnFullSlotAndUnblocksOnContextCancel(t *testing.T) {
	m := NewMixer("mix", 1)
	a := m.AddMixInput("a")
	m.AddMixInput("b") // never filled, so no round ever drains "a"

	require.NoError(t, a.Push(context.Background(), &core.PCM{Samples: []int16{1}, Channels: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Push(ctx, &core.PCM{Samples: []int16{2}, Channels: 1})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("handleInput did not unblock on context cancel")
	}
}
