package audio

import (
	"context"
	"math"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// Mixer fans N named inputs into a single output, in lock-step: each input
// handler only stores its chunk and notifies, a dedicated mixer task (owned
// by the output port, started/stopped on its activation) waits until every
// input has delivered one for the current round, averages them (applying
// each input's own volume/mute first), pushes the mixed block once, then
// releases all inputs for the next round. Grounded on
// original_source/vpipe/capsules/audio/audio_mixer.py's `_mixer_task` /
// `np.mean(chunks, axis=0).round()`; a sync.Cond stands in for the
// original's asyncio.Condition.
type Mixer struct {
	*core.BaseCapsule

	mu       sync.Mutex
	cond     *sync.Cond
	names    []string
	filled   map[string]bool
	chunks   map[string]*core.PCM
	gain     map[string]float64
	mute     map[string]bool
	channels int

	out *core.Port
}

// NewMixer creates an empty mixer producing channels-channel PCM.
func NewMixer(name string, channels int) *Mixer {
	m := &Mixer{
		filled:   make(map[string]bool),
		chunks:   make(map[string]*core.PCM),
		gain:     make(map[string]float64),
		mute:     make(map[string]bool),
		channels: channels,
	}
	m.cond = sync.NewCond(&m.mu)
	m.BaseCapsule = core.NewBaseCapsule("Mixer", name)
	m.out = m.AddOutput("out")
	m.out.SetActivateHandler(m.portActive)
	return m
}

// portActive starts/stops the dedicated mixer task as the output port
// activates/deactivates, matching original_source's `_src_active`.
func (m *Mixer) portActive(ctx context.Context, active bool) error {
	if active {
		m.out.StartTask(m.mixerTask)
	} else {
		m.out.StopTask()
	}
	return nil
}

// AddMixInput registers a new named input slot and returns its port.
func (m *Mixer) AddMixInput(name string) *core.Port {
	m.mu.Lock()
	m.names = append(m.names, name)
	m.filled[name] = false
	m.gain[name] = 1.0
	m.mu.Unlock()
	return m.AddInput(name, m.handleInput)
}

// SetInputVolume sets the linear gain applied to one input before mixing.
func (m *Mixer) SetInputVolume(name string, gain float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain[name] = gain
}

// SetInputMute mutes or unmutes one input in the mix.
func (m *Mixer) SetInputMute(name string, mute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mute[name] = mute
}

// handleInput waits until its own slot is empty, stores the chunk and
// notifies the mixer task; it never mixes or pushes itself. Grounded on
// original_source's `_handle_input`.
func (m *Mixer) handleInput(ctx context.Context, name string, data any) error {
	chunk, _ := data.(*core.PCM)

	m.mu.Lock()
	for m.filled[name] {
		if !m.waitLocked(ctx) {
			m.mu.Unlock()
			return ctx.Err()
		}
	}
	m.chunks[name] = chunk
	m.filled[name] = true
	m.cond.Broadcast()
	m.mu.Unlock()
	return nil
}

// mixerTask is the output port's owned background task: one call mixes and
// pushes exactly one block once every input has supplied one. Grounded on
// original_source's `_mixer_task`.
func (m *Mixer) mixerTask(ctx context.Context) error {
	m.mu.Lock()
	for !m.allFilledLocked() {
		if !m.waitLocked(ctx) {
			m.mu.Unlock()
			return ctx.Err()
		}
	}

	mixed := m.mixLocked()
	for _, n := range m.names {
		m.filled[n] = false
		m.chunks[n] = nil
	}
	m.cond.Broadcast()
	m.mu.Unlock()

	return m.out.Push(ctx, mixed)
}

func (m *Mixer) allFilledLocked() bool {
	if len(m.names) == 0 {
		return false
	}
	for _, n := range m.names {
		if !m.filled[n] {
			return false
		}
	}
	return true
}

// mixLocked averages (not sums) each input's gain-scaled chunk, matching
// original_source/vpipe/capsules/audio/audio_mixer.py's
// `np.mean(chunks, axis=0).round()`.
func (m *Mixer) mixLocked() *core.PCM {
	frames := 0
	for _, n := range m.names {
		if c := m.chunks[n]; c != nil {
			frames = c.Frames()
			break
		}
	}
	sums := make([]float64, frames*m.channels)
	for _, n := range m.names {
		c := m.chunks[n]
		if c == nil || m.mute[n] {
			continue
		}
		gain := m.gain[n]
		limit := len(sums)
		if len(c.Samples) < limit {
			limit = len(c.Samples)
		}
		for i := 0; i < limit; i++ {
			sums[i] += float64(c.Samples[i]) * gain
		}
	}
	count := float64(len(m.names))
	if count == 0 {
		count = 1
	}
	out := core.Silence(frames, m.channels)
	for i, v := range sums {
		out.Samples[i] = clampInt16(math.RoundToEven(v / count))
	}
	return &out
}

// waitLocked blocks on m.cond (m.mu must be held) until signaled or ctx is
// done, returning false in the latter case.
func (m *Mixer) waitLocked(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.cond.Broadcast()
			m.mu.Unlock()
		case <-watchDone:
		}
	}()
	m.cond.Wait()
	close(watchDone)
	return ctx.Err() == nil
}
