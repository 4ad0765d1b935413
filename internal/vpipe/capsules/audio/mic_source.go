package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os/exec"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// MicSource captures raw PCM from a host input device by shelling out to an
// external recorder process (default `arecord`), reading its stdout.
// Grounded on the teacher's internal/audio/capture.go Capturer, which spawns
// `pw-record` via os/exec.CommandContext and reads its stdout in a
// goroutine; the command itself is made pluggable so tests can substitute a
// fake recorder binary.
type MicSource struct {
	*core.AudioSource

	device  string
	cfg     core.AudioConfig
	builder CommandBuilder

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
}

// NewMicSource creates a mic source for the named device. A nil builder
// falls back to DefaultRecorderCommand.
func NewMicSource(name string, cfg core.AudioConfig, device string, builder CommandBuilder) *MicSource {
	if builder == nil {
		builder = DefaultRecorderCommand
	}
	m := &MicSource{device: device, cfg: cfg, builder: builder}
	m.AudioSource = core.NewAudioSource("MicSource", name, cfg, m)
	return m
}

// Open satisfies core.AudioChunker: spawns the recorder process.
func (m *MicSource) Open(ctx context.Context) error {
	bin, args := m.builder(m.device, m.cfg)
	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return &core.DeviceError{Device: m.device, Op: "open", Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return &core.DeviceError{Device: m.device, Op: "start", Err: err}
	}
	m.mu.Lock()
	m.cmd, m.stdout, m.cancel = cmd, stdout, cancel
	m.mu.Unlock()
	return nil
}

// Close satisfies core.AudioChunker: kills the recorder process.
func (m *MicSource) Close(ctx context.Context) error {
	m.mu.Lock()
	cancel, cmd := m.cancel, m.cmd
	m.cmd, m.stdout, m.cancel = nil, nil, nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if cmd != nil {
		_ = cmd.Wait()
	}
	return nil
}

// ReadChunk satisfies core.AudioChunker: reads one full block of raw PCM
// from the recorder's stdout.
func (m *MicSource) ReadChunk(ctx context.Context, frames int) (*core.PCM, error) {
	m.mu.Lock()
	stdout := m.stdout
	m.mu.Unlock()
	if stdout == nil {
		return nil, nil
	}

	need := frames * m.cfg.Format.Channels * m.cfg.Format.SampleSize
	buf := make([]byte, need)
	if _, err := io.ReadFull(stdout, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil
		}
		return nil, &core.DeviceError{Device: m.device, Op: "read", Err: err}
	}

	channels := m.cfg.Format.Channels
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return &core.PCM{Samples: samples, Channels: channels}, nil
}
