// Package audio implements the audio-domain capsules: mixer, volume, RMS
// metering, a time-stretching queue player, file/mic sources, speaker/mic
// sinks, the virtual-device pair, and a cache-aware resampler.
package audio

import (
	"context"
	"math"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// Volume is a gain/mute transform applied sample-wise to a PCM block.
// Grounded on original_source/vpipe/capsules/audio/volume.py.
type Volume struct {
	*core.BaseTransform

	gain float64
	mute bool
}

// NewVolume creates a Volume transform at unity gain, unmuted.
func NewVolume(name string) *Volume {
	v := &Volume{gain: 1.0}
	v.BaseTransform = core.NewBaseTransform("Volume", name, v)
	return v
}

// SetGain sets the linear gain multiplier (1.0 = unity, 0.0 = silent).
func (v *Volume) SetGain(gain float64) { v.gain = gain }

// Gain returns the current linear gain multiplier.
func (v *Volume) Gain() float64 { return v.gain }

// SetMute toggles mute; a muted Volume emits silence regardless of gain.
func (v *Volume) SetMute(mute bool) { v.mute = mute }

// Mute reports whether the transform is currently muted.
func (v *Volume) Mute() bool { return v.mute }

func (v *Volume) Start(ctx context.Context) error { return nil }
func (v *Volume) Stop(ctx context.Context) error  { return nil }

// Transform satisfies core.TransformOps, scaling every sample by gain or
// zeroing the block entirely when muted.
func (v *Volume) Transform(ctx context.Context, data any) (any, error) {
	chunk, ok := data.(*core.PCM)
	if !ok {
		return data, nil
	}
	out := chunk.Clone()
	if v.mute {
		for i := range out.Samples {
			out.Samples[i] = 0
		}
		return &out, nil
	}
	if v.gain == 1.0 {
		return &out, nil
	}
	for i, s := range out.Samples {
		scaled := float64(s) * v.gain
		out.Samples[i] = clampInt16(scaled)
	}
	return &out, nil
}

func clampInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
