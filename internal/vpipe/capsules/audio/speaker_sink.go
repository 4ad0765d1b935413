package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os/exec"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// SpeakerSink plays raw PCM to a host output device by shelling out to an
// external player process (default `aplay`), writing to its stdin.
// Grounded on the teacher's internal/audio/capture.go pattern, mirrored for
// the playback direction.
type SpeakerSink struct {
	*core.AudioSink

	device  string
	cfg     core.AudioConfig
	builder CommandBuilder

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel context.CancelFunc
}

// NewSpeakerSink creates a speaker sink for the named device. A nil builder
// falls back to DefaultPlayerCommand.
func NewSpeakerSink(name string, cfg core.AudioConfig, device string, builder CommandBuilder) *SpeakerSink {
	if builder == nil {
		builder = DefaultPlayerCommand
	}
	s := &SpeakerSink{device: device, cfg: cfg, builder: builder}
	s.AudioSink = core.NewAudioSink("SpeakerSink", name, s)
	return s
}

// Open satisfies core.AudioSinkOps: spawns the player process.
func (s *SpeakerSink) Open(ctx context.Context) error {
	bin, args := s.builder(s.device, s.cfg)
	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, bin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return &core.DeviceError{Device: s.device, Op: "open", Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return &core.DeviceError{Device: s.device, Op: "start", Err: err}
	}
	s.mu.Lock()
	s.cmd, s.stdin, s.cancel = cmd, stdin, cancel
	s.mu.Unlock()
	return nil
}

// Close satisfies core.AudioSinkOps: closes stdin and waits for the player
// to exit.
func (s *SpeakerSink) Close(ctx context.Context) error {
	s.mu.Lock()
	cancel, cmd, stdin := s.cancel, s.cmd, s.stdin
	s.cmd, s.stdin, s.cancel = nil, nil, nil
	s.mu.Unlock()
	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd != nil {
		_ = cmd.Wait()
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// WriteChunk satisfies core.AudioSinkOps: writes a raw PCM block to the
// player's stdin.
func (s *SpeakerSink) WriteChunk(ctx context.Context, chunk *core.PCM) error {
	s.mu.Lock()
	stdin := s.stdin
	s.mu.Unlock()
	if stdin == nil {
		return &core.DeviceError{Device: s.device, Op: "write", Err: io.ErrClosedPipe}
	}
	buf := make([]byte, len(chunk.Samples)*2)
	for i, v := range chunk.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(v))
	}
	if _, err := stdin.Write(buf); err != nil {
		return &core.DeviceError{Device: s.device, Op: "write", Err: err}
	}
	return nil
}
