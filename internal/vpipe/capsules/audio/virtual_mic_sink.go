package audio

import (
	"context"
	"time"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// VirtualMicSink writes PCM to a VirtualDeviceClient acting as a virtual
// microphone endpoint for other applications to capture from. It polls the
// device's status before writing and blocks (back-pressuring its upstream)
// until there's room, rather than writing into an already-full device
// buffer. Grounded on
// original_source/vpipe/capsules/audio/virtual_mic_sink.py.
type VirtualMicSink struct {
	*core.AudioSink

	client       VirtualDeviceClient
	pollInterval time.Duration
}

// NewVirtualMicSink creates a virtual mic sink writing to client.
func NewVirtualMicSink(name string, cfg core.AudioConfig, client VirtualDeviceClient) *VirtualMicSink {
	v := &VirtualMicSink{client: client, pollInterval: 5 * time.Millisecond}
	v.AudioSink = core.NewAudioSink("VirtualMicSink", name, v)
	return v
}

// Open satisfies core.AudioSinkOps: clears any stale buffered data.
func (v *VirtualMicSink) Open(ctx context.Context) error {
	return v.client.Clear(ctx)
}

// Close satisfies core.AudioSinkOps.
func (v *VirtualMicSink) Close(ctx context.Context) error { return nil }

// WriteChunk satisfies core.AudioSinkOps: polls until there's room, then
// writes.
func (v *VirtualMicSink) WriteChunk(ctx context.Context, chunk *core.PCM) error {
	data := pcmToBytes(chunk)
	for {
		status, err := v.client.Status(ctx)
		if err != nil {
			return &core.DeviceError{Device: v.Path(), Op: "status", Err: err}
		}
		if status.Capacity <= 0 || status.Buffered+len(data) <= status.Capacity {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.pollInterval):
		}
	}
	if err := v.client.Write(ctx, data); err != nil {
		return &core.DeviceError{Device: v.Path(), Op: "write", Err: err}
	}
	return nil
}
