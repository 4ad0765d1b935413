package audio

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func catBuilder(path string) CommandBuilder {
	return func(device string, cfg core.AudioConfig) (string, []string) {
		return "cat", []string{path}
	}
}

func writeRawPCM(t *testing.T, samples []int16) string {
	t.Helper()
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	path := filepath.Join(t.TempDir(), "raw.pcm")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestMicSource_ReadChunkReadsFromRecorderStdout(t *testing.T) {
	path := writeRawPCM(t, []int16{1, 2, 3, 4})
	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1, SampleSize: 2}}
	m := NewMicSource("mic", cfg, "fake-device", catBuilder(path))

	require.NoError(t, m.Open(context.Background()))
	defer m.Close(context.Background())

	chunk, err := m.ReadChunk(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3, 4}, chunk.Samples)
}

func TestMicSource_ReadChunkEOFReturnsNil(t *testing.T) {
	path := writeRawPCM(t, []int16{1, 2})
	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1, SampleSize: 2}}
	m := NewMicSource("mic", cfg, "fake-device", catBuilder(path))

	require.NoError(t, m.Open(context.Background()))
	defer m.Close(context.Background())

	_, err := m.ReadChunk(context.Background(), 2)
	require.NoError(t, err)

	chunk, err := m.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, chunk)
}

func TestMicSource_OpenErrorsOnMissingBinary(t *testing.T) {
	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1, SampleSize: 2}}
	builder := func(device string, cfg core.AudioConfig) (string, []string) {
		return "/no/such/recorder-binary", nil
	}
	m := NewMicSource("mic", cfg, "fake-device", builder)
	err := m.Open(context.Background())
	assert.Error(t, err)
}

func TestMicSource_ReadChunkWithoutOpenReturnsNil(t *testing.T) {
	cfg := core.AudioConfig{Format: core.AudioFormat{Channels: 1, SampleSize: 2}}
	m := NewMicSource("mic", cfg, "fake-device", nil)
	chunk, err := m.ReadChunk(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, chunk)
}
