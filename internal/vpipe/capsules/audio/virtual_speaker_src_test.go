package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func TestVirtualSpeakerSource_ReadChunkReturnsAvailableData(t *testing.T) {
	client := NewInMemoryVirtualDevice(0)
	require.NoError(t, client.Write(context.Background(), pcmToBytes(&core.PCM{Samples: []int16{1, 2, 3, 4}, Channels: 1})))

	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1}}
	v := NewVirtualSpeakerSource("vspk", cfg, client)

	chunk, err := v.ReadChunk(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3, 4}, chunk.Samples)
}

func TestVirtualSpeakerSource_ShortReadPaddedWithSilence(t *testing.T) {
	client := NewInMemoryVirtualDevice(0)
	require.NoError(t, client.Write(context.Background(), pcmToBytes(&core.PCM{Samples: []int16{5, 6}, Channels: 1})))

	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1}}
	v := NewVirtualSpeakerSource("vspk", cfg, client)

	chunk, err := v.ReadChunk(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int16{5, 6, 0, 0}, chunk.Samples)
}

func TestVirtualSpeakerSource_OpenClearsStaleData(t *testing.T) {
	client := NewInMemoryVirtualDevice(0)
	require.NoError(t, client.Write(context.Background(), []byte{9, 9}))

	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1}}
	v := NewVirtualSpeakerSource("vspk", cfg, client)
	require.NoError(t, v.Open(context.Background()))

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, status.Buffered)
}
