package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// FileSource decodes a WAV file into the pipeline's native PCM format at
// Open and serves fixed-length chunks from it in ReadChunk, optionally
// looping back to the start at end of file. Grounded on
// original_source/vpipe/capsules/audio/file_source.py; the original
// decodes via pydub, for which no pack repo wires a Go equivalent, so a
// small RIFF/WAVE parser replaces it here (documented in DESIGN.md).
type FileSource struct {
	*core.AudioSource

	path string

	mu       sync.Mutex
	samples  []int16
	channels int
	pos      int
	loop     bool
}

// NewFileSource creates a file-backed source reading path at Open.
func NewFileSource(name string, cfg core.AudioConfig, path string, loop bool) *FileSource {
	fs := &FileSource{path: path, channels: cfg.Format.Channels, loop: loop}
	fs.AudioSource = core.NewAudioSource("FileSource", name, cfg, fs)
	return fs
}

// Open satisfies core.AudioChunker: reads and decodes the WAV file.
func (fs *FileSource) Open(ctx context.Context) error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return &core.DeviceError{Device: fs.path, Op: "open", Err: err}
	}
	samples, _, _, err := parseWAV(raw)
	if err != nil {
		return &core.DeviceError{Device: fs.path, Op: "decode", Err: err}
	}
	fs.mu.Lock()
	fs.samples = samples
	fs.pos = 0
	fs.mu.Unlock()
	return nil
}

// Close satisfies core.AudioChunker: resets read position.
func (fs *FileSource) Close(ctx context.Context) error {
	fs.mu.Lock()
	fs.pos = 0
	fs.mu.Unlock()
	return nil
}

// ReadChunk satisfies core.AudioChunker. Returns (nil, nil) at end of file
// when not looping.
func (fs *FileSource) ReadChunk(ctx context.Context, frames int) (*core.PCM, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.pos >= len(fs.samples) {
		if !fs.loop {
			return nil, nil
		}
		fs.pos = 0
	}

	need := frames * fs.channels
	end := fs.pos + need
	if end > len(fs.samples) {
		out := make([]int16, need)
		copy(out, fs.samples[fs.pos:])
		fs.pos = len(fs.samples)
		return &core.PCM{Samples: out, Channels: fs.channels}, nil
	}
	out := append([]int16{}, fs.samples[fs.pos:end]...)
	fs.pos = end
	return &core.PCM{Samples: out, Channels: fs.channels}, nil
}

// parseWAV extracts 16-bit PCM samples, channel count and sample rate from
// a canonical RIFF/WAVE byte stream.
func parseWAV(data []byte) (samples []int16, channels int, rate int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var bits int
	var dataBytes []byte

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if chunkSize > len(body) {
			chunkSize = len(body)
		}
		switch chunkID {
		case "fmt ":
			if chunkSize >= 16 {
				channels = int(binary.LittleEndian.Uint16(body[2:4]))
				rate = int(binary.LittleEndian.Uint32(body[4:8]))
				bits = int(binary.LittleEndian.Uint16(body[14:16]))
			}
		case "data":
			dataBytes = body[:chunkSize]
		}
		pos += 8 + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if bits != 16 {
		return nil, 0, 0, fmt.Errorf("unsupported bit depth %d (only 16-bit PCM is supported)", bits)
	}
	n := len(dataBytes) / 2
	samples = make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(dataBytes[i*2 : i*2+2]))
	}
	return samples, channels, rate, nil
}
