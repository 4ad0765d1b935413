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

// writeTestWAV builds a minimal canonical 16-bit PCM mono WAV file containing
// samples, and returns its path.
func writeTestWAV(t *testing.T, samples []int16) string {
	t.Helper()
	dataBytes := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dataBytes[i*2:], uint16(s))
	}

	var buf []byte
	buf = append(buf, []byte("RIFF")...)
	buf = appendUint32(buf, uint32(36+len(dataBytes)))
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	buf = appendUint32(buf, 16)
	fmtBody := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtBody[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtBody[2:4], 1) // mono
	binary.LittleEndian.PutUint32(fmtBody[4:8], 16000)
	binary.LittleEndian.PutUint32(fmtBody[8:12], 32000)
	binary.LittleEndian.PutUint16(fmtBody[12:14], 2)
	binary.LittleEndian.PutUint16(fmtBody[14:16], 16)
	buf = append(buf, fmtBody...)

	buf = append(buf, []byte("data")...)
	buf = appendUint32(buf, uint32(len(dataBytes)))
	buf = append(buf, dataBytes...)

	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func appendUint32(buf []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return append(buf, b...)
}

func TestParseWAV_DecodesMonoPCM16(t *testing.T) {
	path := writeTestWAV(t, []int16{1, 2, 3, 4})
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	samples, channels, rate, err := parseWAV(raw)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3, 4}, samples)
	assert.Equal(t, 1, channels)
	assert.Equal(t, 16000, rate)
}

func TestParseWAV_RejectsNonRIFF(t *testing.T) {
	_, _, _, err := parseWAV([]byte("not a wav file at all"))
	assert.Error(t, err)
}

func TestFileSource_ReadsChunksInOrder(t *testing.T) {
	path := writeTestWAV(t, []int16{1, 2, 3, 4, 5, 6})
	fs := NewFileSource("fs", core.AudioConfig{Format: core.AudioFormat{Channels: 1}}, path, false)

	require.NoError(t, fs.Open(context.Background()))

	chunk, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2}, chunk.Samples)

	chunk, err = fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{3, 4}, chunk.Samples)
}

func TestFileSource_EOFWithoutLoopReturnsNil(t *testing.T) {
	path := writeTestWAV(t, []int16{1, 2})
	fs := NewFileSource("fs", core.AudioConfig{Format: core.AudioFormat{Channels: 1}}, path, false)
	require.NoError(t, fs.Open(context.Background()))

	_, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)

	chunk, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, chunk)
}

func TestFileSource_LoopsBackToStart(t *testing.T) {
	path := writeTestWAV(t, []int16{1, 2})
	fs := NewFileSource("fs", core.AudioConfig{Format: core.AudioFormat{Channels: 1}}, path, true)
	require.NoError(t, fs.Open(context.Background()))

	_, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)

	chunk, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2}, chunk.Samples)
}

func TestFileSource_CloseResetsPosition(t *testing.T) {
	path := writeTestWAV(t, []int16{1, 2, 3, 4})
	fs := NewFileSource("fs", core.AudioConfig{Format: core.AudioFormat{Channels: 1}}, path, false)
	require.NoError(t, fs.Open(context.Background()))

	_, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, fs.Close(context.Background()))

	chunk, err := fs.ReadChunk(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2}, chunk.Samples)
}

func TestFileSource_OpenErrorsOnMissingFile(t *testing.T) {
	fs := NewFileSource("fs", core.AudioConfig{Format: core.AudioFormat{Channels: 1}}, "/no/such/file.wav", false)
	err := fs.Open(context.Background())
	assert.Error(t, err)
}
