package core

import (
	"context"
	"fmt"
)

// AudioSinkOps is the device/file-specific half of an AudioSink.
type AudioSinkOps interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	WriteChunk(ctx context.Context, chunk *PCM) error
}

// AudioSink adapts an AudioSinkOps into a BaseSink, type-asserting every
// pushed value to *PCM before handing it to the device. Grounded on
// original_source/vpipe/core/audiosink.py.
type AudioSink struct {
	*BaseSink
	ops AudioSinkOps
}

// NewAudioSink wires ops as the sink's device implementation.
func NewAudioSink(kind, name string, ops AudioSinkOps) *AudioSink {
	a := &AudioSink{ops: ops}
	a.BaseSink = NewBaseSink(kind, name, a)
	return a
}

func (a *AudioSink) Open(ctx context.Context) error  { return a.ops.Open(ctx) }
func (a *AudioSink) Close(ctx context.Context) error { return a.ops.Close(ctx) }

func (a *AudioSink) Write(ctx context.Context, data any) error {
	chunk, ok := data.(*PCM)
	if !ok {
		return fmt.Errorf("vpipe: audio sink %q received non-PCM data (%T)", a.Path(), data)
	}
	return a.ops.WriteChunk(ctx, chunk)
}
