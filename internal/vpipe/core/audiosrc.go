package core

import (
	"context"
	"time"
)

// AudioChunker is the device/file-specific half of an AudioSource: open the
// underlying stream, read one fixed-length chunk at a time, close it.
// ReadChunk returning a nil *PCM means no data is available this tick
// (end of file, a starved device) without that being an error.
type AudioChunker interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	ReadChunk(ctx context.Context, frames int) (*PCM, error)
}

// AudioSource wraps an AudioChunker with a timing wheel so it produces
// blocks at wall-clock real time regardless of how fast the underlying
// reader could otherwise run (a file source would otherwise drain
// instantly). Grounded on original_source/vpipe/core/audiosrc.py's
// `timing_control` decorator.
type AudioSource struct {
	*BaseSource

	cfg      AudioConfig
	chunker  AudioChunker
	nextTime time.Time
}

// NewAudioSource creates a rate-paced source reading cfg.Blocksize frames
// at a time from chunker, at cfg.Format.Rate's real-time pace.
func NewAudioSource(kind, name string, cfg AudioConfig, chunker AudioChunker) *AudioSource {
	a := &AudioSource{cfg: cfg, chunker: chunker}
	a.BaseSource = NewBaseSource(kind, name, a)
	return a
}

// Config returns the source's audio format and block size.
func (a *AudioSource) Config() AudioConfig { return a.cfg }

// Start satisfies SourceOps: opens the chunker and arms the timing wheel.
func (a *AudioSource) Start(ctx context.Context) error {
	if err := a.chunker.Open(ctx); err != nil {
		return err
	}
	a.nextTime = time.Now()
	return nil
}

// Stop satisfies SourceOps: closes the chunker.
func (a *AudioSource) Stop(ctx context.Context) error {
	err := a.chunker.Close(ctx)
	a.nextTime = time.Time{}
	return err
}

// Read satisfies SourceOps: sleeps until the next scheduled block boundary,
// advances the wheel, then reads one block.
func (a *AudioSource) Read(ctx context.Context) (any, error) {
	wait := time.Until(a.nextTime)
	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
	a.nextTime = a.nextTime.Add(a.cfg.BlockDuration())

	chunk, err := a.chunker.ReadChunk(ctx, a.cfg.Blocksize)
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, nil
	}
	return chunk, nil
}
