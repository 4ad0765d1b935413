package audio

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// QueuePlayer buffers incoming PCM pushed to its "in" port and plays it out
// at the pipeline's own pace (as an AudioSource), keeping buffer occupancy
// near a target by gently time-stretching each served block toward or away
// from real-time instead of dropping or padding with silence outright.
// Falls back to silence only when the buffer runs completely dry. Grounded
// on original_source/vpipe/capsules/audio/audio_queue_player.py; the
// original leans on pydub's frame-rate-reinterpretation trick for the
// stretch step, which Go has no pack-provided equivalent for, so the same
// linear-interpolation resample kernel used by CacheResampler is reused
// here instead (documented in DESIGN.md).
type QueuePlayer struct {
	*core.AudioSource

	mu              sync.Mutex
	buffer          []int16
	channels        int
	maxBufferFrames int
	targetFrames    int
	speed           float64
	dropped         atomic.Int64
}

// NewQueuePlayer creates a queue player with the given playback config and
// a buffer bound of maxBufferFrames frames (0 = unbounded).
func NewQueuePlayer(name string, cfg core.AudioConfig, maxBufferFrames int) *QueuePlayer {
	qp := &QueuePlayer{
		channels:        cfg.Format.Channels,
		maxBufferFrames: maxBufferFrames,
		targetFrames:    maxBufferFrames / 2,
		speed:           1.0,
	}
	qp.AudioSource = core.NewAudioSource("QueuePlayer", name, cfg, qp)
	qp.AddInput("in", qp.handleInput)
	return qp
}

// SetProp sets "speed" (float64, 1.0 = unity): each incoming block is
// resampled by 1/speed before buffering, so a speed above 1 plays back
// faster (shorter buffered duration) and below 1 slower. Grounded on
// original_source/vpipe/capsules/audio/audio_queue_player.py's set_prop,
// whose pydub frame-rate-reinterpretation trick this linear-resample
// stand-in replaces (documented in DESIGN.md).
func (qp *QueuePlayer) SetProp(key string, value any) error {
	switch key {
	case "speed":
		speed, ok := value.(float64)
		if !ok || speed <= 0 {
			return &core.ConfigError{Key: key}
		}
		qp.mu.Lock()
		qp.speed = speed
		qp.mu.Unlock()
		return nil
	default:
		return &core.ConfigError{Key: key}
	}
}

func (qp *QueuePlayer) handleInput(ctx context.Context, _ string, data any) error {
	chunk, ok := data.(*core.PCM)
	if !ok {
		return nil
	}
	qp.mu.Lock()
	defer qp.mu.Unlock()

	samples := chunk.Samples
	if qp.speed != 1.0 {
		perChannel := deinterleave(*chunk, qp.channels)
		stretchedLen := int(math.Round(float64(chunk.Frames()) / qp.speed))
		outChannel := make([][]int16, qp.channels)
		for ch := range perChannel {
			outChannel[ch] = resampleToLength(perChannel[ch], stretchedLen)
		}
		samples = interleave(outChannel, qp.channels)
	}

	frames := len(samples) / qp.channels
	if qp.maxBufferFrames > 0 {
		occupied := len(qp.buffer) / qp.channels
		if occupied+frames > qp.maxBufferFrames {
			overflow := occupied + frames - qp.maxBufferFrames
			dropSamples := overflow * qp.channels
			if dropSamples > len(qp.buffer) {
				dropSamples = len(qp.buffer)
			}
			qp.buffer = qp.buffer[dropSamples:]
			qp.dropped.Add(int64(dropSamples / qp.channels))
		}
	}
	qp.buffer = append(qp.buffer, samples...)
	return nil
}

// Dropped returns the total number of frames discarded to keep the buffer
// within its bound.
func (qp *QueuePlayer) Dropped() int64 { return qp.dropped.Load() }

// BufferedFrames reports the number of frames currently queued.
func (qp *QueuePlayer) BufferedFrames() int {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	return len(qp.buffer) / qp.channels
}

// Open satisfies core.AudioChunker.
func (qp *QueuePlayer) Open(ctx context.Context) error {
	qp.mu.Lock()
	qp.buffer = nil
	qp.mu.Unlock()
	return nil
}

// Close satisfies core.AudioChunker.
func (qp *QueuePlayer) Close(ctx context.Context) error {
	qp.mu.Lock()
	qp.buffer = nil
	qp.mu.Unlock()
	return nil
}

// ReadChunk satisfies core.AudioChunker: serves `frames` frames, stretching
// the consumed portion of the buffer toward the target occupancy, and
// falling back to silence when the buffer is empty.
func (qp *QueuePlayer) ReadChunk(ctx context.Context, frames int) (*core.PCM, error) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	avail := len(qp.buffer) / qp.channels
	if avail == 0 {
		return &core.PCM{Samples: make([]int16, frames*qp.channels), Channels: qp.channels}, nil
	}

	ratio := 1.0
	if qp.targetFrames > 0 {
		ratio = float64(avail) / float64(qp.targetFrames)
		if ratio < 0.85 {
			ratio = 0.85
		}
		if ratio > 1.15 {
			ratio = 1.15
		}
	}

	srcFrames := int(math.Round(float64(frames) * ratio))
	if srcFrames > avail {
		srcFrames = avail
	}
	if srcFrames == 0 {
		srcFrames = avail
	}
	consumed := srcFrames * qp.channels
	if consumed > len(qp.buffer) {
		consumed = len(qp.buffer)
	}
	raw := qp.buffer[:consumed]
	qp.buffer = qp.buffer[consumed:]

	perChannel := deinterleave(core.PCM{Samples: raw, Channels: qp.channels}, qp.channels)
	outChannel := make([][]int16, qp.channels)
	for ch := range perChannel {
		outChannel[ch] = resampleToLength(perChannel[ch], frames)
	}
	out := interleave(outChannel, qp.channels)
	if len(out) < frames*qp.channels {
		padded := make([]int16, frames*qp.channels)
		copy(padded, out)
		out = padded
	}
	return &core.PCM{Samples: out, Channels: qp.channels}, nil
}

// resampleToLength linearly interpolates samples to exactly outLen frames,
// the stretch kernel QueuePlayer uses to nudge buffer occupancy toward its
// target without dropouts.
func resampleToLength(samples []int16, outLen int) []int16 {
	if outLen <= 0 {
		return nil
	}
	n := len(samples)
	out := make([]int16, outLen)
	if n == 0 {
		return out
	}
	if n == 1 {
		for i := range out {
			out[i] = samples[0]
		}
		return out
	}
	denom := outLen - 1
	if denom < 1 {
		denom = 1
	}
	scale := float64(n-1) / float64(denom)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * scale
		i0 := int(math.Floor(pos))
		if i0 >= n-1 {
			out[i] = samples[n-1]
			continue
		}
		frac := pos - float64(i0)
		out[i] = clampInt16(float64(samples[i0]) + (float64(samples[i0+1])-float64(samples[i0]))*frac)
	}
	return out
}
