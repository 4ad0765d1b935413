package audio

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// VirtualSpeakerSource reads PCM from a VirtualDeviceClient acting as a
// virtual speaker endpoint other applications write to (e.g. the remote
// party's audio in a video call), quantizing short reads up to a full
// block with silence. Grounded on
// original_source/vpipe/capsules/audio/virtual_speaker_src.py.
type VirtualSpeakerSource struct {
	*core.AudioSource

	client   VirtualDeviceClient
	channels int
}

// NewVirtualSpeakerSource creates a virtual speaker source reading from
// client.
func NewVirtualSpeakerSource(name string, cfg core.AudioConfig, client VirtualDeviceClient) *VirtualSpeakerSource {
	v := &VirtualSpeakerSource{client: client, channels: cfg.Format.Channels}
	v.AudioSource = core.NewAudioSource("VirtualSpeakerSource", name, cfg, v)
	return v
}

// Open satisfies core.AudioChunker: clears any stale buffered data.
func (v *VirtualSpeakerSource) Open(ctx context.Context) error {
	return v.client.Clear(ctx)
}

// Close satisfies core.AudioChunker.
func (v *VirtualSpeakerSource) Close(ctx context.Context) error { return nil }

// ReadChunk satisfies core.AudioChunker: reads up to one block's worth of
// bytes, padding a short read with silence so every block is full-length.
func (v *VirtualSpeakerSource) ReadChunk(ctx context.Context, frames int) (*core.PCM, error) {
	need := frames * v.channels * 2
	data, err := v.client.Read(ctx, need)
	if err != nil {
		return nil, &core.DeviceError{Device: v.Path(), Op: "read", Err: err}
	}
	samples := bytesToPCM(data, v.channels)
	out := make([]int16, frames*v.channels)
	copy(out, samples)
	return &core.PCM{Samples: out, Channels: v.channels}, nil
}
