package audio

import (
	"context"
	"math"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// CacheResampler resamples PCM blocks between sample rates while keeping
// continuity across chunk boundaries: each call prepends a short cache of
// the previous call's trailing samples before resampling, then crops off
// the cache-derived prefix of the result, so the join between blocks
// doesn't produce a resampling transient. Grounded on
// original_source/vpipe/utils/cache_resampler.py. No pack repo wires a
// polyphase/high-quality resampler, so the resample kernel itself is linear
// interpolation (documented in DESIGN.md as a stdlib-only part); the
// cache-prepend-then-crop contract is kept exactly as the original.
type CacheResampler struct {
	*core.BaseTransform

	srcRate, dstRate int
	channels         int
	cacheFrames      int
	cache            [][]int16 // per channel
}

// NewCacheResampler creates a resampler from srcRate to dstRate for the
// given channel count, retaining cacheFrames of trailing history per
// channel between calls.
func NewCacheResampler(name string, srcRate, dstRate, channels, cacheFrames int) *CacheResampler {
	r := &CacheResampler{
		srcRate:     srcRate,
		dstRate:     dstRate,
		channels:    channels,
		cacheFrames: cacheFrames,
		cache:       make([][]int16, channels),
	}
	r.BaseTransform = core.NewBaseTransform("CacheResampler", name, r)
	return r
}

func (r *CacheResampler) Start(ctx context.Context) error {
	for i := range r.cache {
		r.cache[i] = nil
	}
	return nil
}

func (r *CacheResampler) Stop(ctx context.Context) error {
	for i := range r.cache {
		r.cache[i] = nil
	}
	return nil
}

// Transform satisfies core.TransformOps.
func (r *CacheResampler) Transform(ctx context.Context, data any) (any, error) {
	chunk, ok := data.(*core.PCM)
	if !ok {
		return data, nil
	}
	if r.srcRate == r.dstRate {
		return chunk, nil
	}

	perChannel := deinterleave(*chunk, r.channels)
	outPerChannel := make([][]int16, r.channels)

	for ch := 0; ch < r.channels; ch++ {
		cached := r.cache[ch]
		combined := make([]int16, 0, len(cached)+len(perChannel[ch]))
		combined = append(combined, cached...)
		combined = append(combined, perChannel[ch]...)

		resampled := linearResample(combined, r.srcRate, r.dstRate)

		cacheOutFrames := int(math.Round(float64(len(cached)) * float64(r.dstRate) / float64(r.srcRate)))
		if cacheOutFrames > len(resampled) {
			cacheOutFrames = len(resampled)
		}
		outPerChannel[ch] = resampled[cacheOutFrames:]

		start := len(combined) - r.cacheFrames
		if start < 0 {
			start = 0
		}
		r.cache[ch] = append([]int16{}, combined[start:]...)
	}

	out := interleave(outPerChannel, r.channels)
	return &core.PCM{Samples: out, Channels: r.channels}, nil
}

func linearResample(samples []int16, srcRate, dstRate int) []int16 {
	n := len(samples)
	if n == 0 || srcRate == dstRate {
		return append([]int16{}, samples...)
	}
	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(math.Round(float64(n) * ratio))
	out := make([]int16, outLen)
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		i0 := int(math.Floor(srcPos))
		frac := srcPos - float64(i0)
		var s0, s1 float64
		if i0 < n {
			s0 = float64(samples[i0])
		}
		if i0+1 < n {
			s1 = float64(samples[i0+1])
		} else {
			s1 = s0
		}
		out[i] = clampInt16(s0 + (s1-s0)*frac)
	}
	return out
}

func deinterleave(chunk core.PCM, channels int) [][]int16 {
	out := make([][]int16, channels)
	frames := chunk.Frames()
	for ch := 0; ch < channels; ch++ {
		out[ch] = make([]int16, frames)
	}
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][f] = chunk.Samples[f*channels+ch]
		}
	}
	return out
}

func interleave(perChannel [][]int16, channels int) []int16 {
	if channels == 0 {
		return nil
	}
	frames := len(perChannel[0])
	out := make([]int16, frames*channels)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			out[f*channels+ch] = perChannel[ch][f]
		}
	}
	return out
}
