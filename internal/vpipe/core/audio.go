package core

import "time"

// SampleFormat identifies the PCM sample encoding carried through the
// pipeline. Only signed 16-bit is implemented, matching the original's
// int16 contract throughout vpipe/core/config.py.
type SampleFormat int

const (
	SampleFormatInt16 SampleFormat = iota
)

// AudioFormat describes the wire shape of PCM flowing between capsules.
type AudioFormat struct {
	Rate       int
	Channels   int
	Format     SampleFormat
	SampleSize int // bytes per sample; 2 for int16
}

// AudioConfig bundles an AudioFormat with the fixed block size the pipeline
// reads and writes at. Grounded on original_source/vpipe/core/config.py.
type AudioConfig struct {
	Format    AudioFormat
	Blocksize int
}

// BlockDuration is the wall-clock time one Blocksize-sized block represents
// at this config's sample rate, used by the rate-paced AudioSource timing
// wheel.
func (c AudioConfig) BlockDuration() time.Duration {
	if c.Format.Rate == 0 {
		return 0
	}
	return time.Duration(float64(c.Blocksize) / float64(c.Format.Rate) * float64(time.Second))
}

// DefaultAudioConfig matches the original's defaults: 16kHz mono int16 at a
// 2048-sample blocksize.
var DefaultAudioConfig = AudioConfig{
	Format: AudioFormat{
		Rate:       16000,
		Channels:   1,
		Format:     SampleFormatInt16,
		SampleSize: 2,
	},
	Blocksize: 2048,
}

// PCM is an interleaved signed 16-bit audio block: Samples holds
// frame0ch0, frame0ch1, ..., frame1ch0, frame1ch1, ... in Channels groups.
type PCM struct {
	Samples  []int16
	Channels int
}

// Frames returns the number of sample frames carried, dividing out channels.
func (p PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Clone returns a deep copy so callers holding onto a block are unaffected
// by downstream in-place transforms (Volume, mixing).
func (p PCM) Clone() PCM {
	cp := make([]int16, len(p.Samples))
	copy(cp, p.Samples)
	return PCM{Samples: cp, Channels: p.Channels}
}

// Silence returns a zeroed PCM block of the given frame count and channels.
func Silence(frames, channels int) PCM {
	return PCM{Samples: make([]int16, frames*channels), Channels: channels}
}
