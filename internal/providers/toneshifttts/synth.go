// Package toneshifttts is an illustrative TTSService reference
// implementation: it synthesizes a sine-wave tone whose pitch is derived
// from the target language and whose duration scales with the text
// length, standing in for a real speech synthesizer so the TTS plug-point
// can be exercised end to end without a concrete provider (out of scope).
// Grounded on the "Synthesize" shape of
// original_source/vpipe/capsules/services/tts.py.
package toneshifttts

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// Synthesizer generates tone-based placeholder audio at rate/channels.
type Synthesizer struct {
	rate         int
	channels     int
	msPerChar    int
	baseFreqHz   float64
	minDurationM int
}

// New creates a Synthesizer producing audio at rate Hz with the given
// channel count.
func New(rate, channels int) *Synthesizer {
	return &Synthesizer{
		rate:         rate,
		channels:     channels,
		msPerChar:    60,
		baseFreqHz:   220,
		minDurationM: 200,
	}
}

// Synthesize satisfies services.TTSService: it fails only when ctx is
// already done, and otherwise returns at least minDurationM milliseconds
// of audio, even for empty text, so downstream mixing/resampling always has something to work
// with. refVoice/speakerID are accepted for interface compatibility but
// ignored — a tone generator has no voice to clone.
func (s *Synthesizer) Synthesize(ctx context.Context, lang, text string, refVoice *core.PCM, speakerID string) (*core.PCM, error) {
	select {
	case <-ctx.Done():
		return nil, &core.ServiceError{Service: "tts", Op: "synthesize", Err: ctx.Err()}
	default:
	}

	durationMs := len(text) * s.msPerChar
	if durationMs < s.minDurationM {
		durationMs = s.minDurationM
	}
	frames := s.rate * durationMs / 1000
	freq := s.baseFreqHz * langPitchMultiplier(lang)

	samples := make([]int16, frames*s.channels)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(s.rate)
		v := math.Sin(2 * math.Pi * freq * t)
		sample := int16(v * 0.2 * math.MaxInt16)
		for ch := 0; ch < s.channels; ch++ {
			samples[i*s.channels+ch] = sample
		}
	}

	return &core.PCM{Samples: samples, Channels: s.channels}, nil
}

// langPitchMultiplier derives a small, stable per-language pitch offset
// from a hash of the language tag, so different target languages are at
// least audibly distinct in a demo run.
func langPitchMultiplier(lang string) float64 {
	if lang == "" {
		return 1
	}
	h := fnv.New32a()
	h.Write([]byte(lang))
	return 1 + float64(h.Sum32()%5)*0.1
}
