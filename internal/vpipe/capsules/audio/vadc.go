package audio

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// VirtualDeviceStatus reports a virtual device's current buffer occupancy.
type VirtualDeviceStatus struct {
	Buffered int
	Capacity int
}

// VirtualDeviceClient is the four-operation control surface
// (write/clear/status/read) a virtual audio device exposes. Grounded on
// original_source/vpipe/utils/virtual_audio_device_client.py's
// VirtualAudioDeviceClient, which issues win32file.DeviceIoControl calls
// against a kernel driver handle; no pack repo talks to a raw Windows
// device handle, so that transport is out of scope (DESIGN.md) and this
// models only the four operations, leaving the transport pluggable.
type VirtualDeviceClient interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)
	Status(ctx context.Context) (VirtualDeviceStatus, error)
	Clear(ctx context.Context) error
}

// InMemoryVirtualDevice is a VirtualDeviceClient backed by a plain byte
// buffer, used by tests and the CLI demo in place of a real kernel device.
type InMemoryVirtualDevice struct {
	mu       sync.Mutex
	buf      []byte
	capacity int
}

// NewInMemoryVirtualDevice creates an in-memory virtual device bounded to
// capacity bytes (0 = unbounded).
func NewInMemoryVirtualDevice(capacity int) *InMemoryVirtualDevice {
	return &InMemoryVirtualDevice{capacity: capacity}
}

func (d *InMemoryVirtualDevice) Write(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capacity > 0 && len(d.buf)+len(data) > d.capacity {
		return &core.DeviceError{Device: "in-memory", Op: "write", Err: errBufferFull}
	}
	d.buf = append(d.buf, data...)
	return nil
}

func (d *InMemoryVirtualDevice) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := maxBytes
	if n > len(d.buf) {
		n = len(d.buf)
	}
	out := append([]byte{}, d.buf[:n]...)
	d.buf = d.buf[n:]
	return out, nil
}

func (d *InMemoryVirtualDevice) Status(ctx context.Context) (VirtualDeviceStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return VirtualDeviceStatus{Buffered: len(d.buf), Capacity: d.capacity}, nil
}

func (d *InMemoryVirtualDevice) Clear(ctx context.Context) error {
	d.mu.Lock()
	d.buf = nil
	d.mu.Unlock()
	return nil
}

var errBufferFull = errBufferFullType{}

type errBufferFullType struct{}

func (errBufferFullType) Error() string { return "virtual device buffer full" }

func pcmToBytes(chunk *core.PCM) []byte {
	buf := make([]byte, len(chunk.Samples)*2)
	for i, v := range chunk.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(v))
	}
	return buf
}

func bytesToPCM(data []byte, channels int) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}
