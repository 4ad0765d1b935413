package core

import "time"

// Buffer wraps a value flowing through a port with a capture timestamp and
// a small metadata bag, matching original_source/vpipe/core/buffer.py's
// VpBuffer. Most capsules push bare *PCM or Payload values directly; Buffer
// is for callers that need to carry timing/metadata alongside the payload
// (e.g. a source stamping capture time before pushing downstream).
type Buffer struct {
	Data      any
	Timestamp time.Time
	Meta      map[string]any
}

// NewBuffer stamps data with the current time and an empty meta bag.
func NewBuffer(data any) *Buffer {
	return &Buffer{Data: data, Timestamp: time.Now(), Meta: make(map[string]any)}
}

// WithMeta sets a metadata key and returns the buffer for chaining.
func (b *Buffer) WithMeta(key string, value any) *Buffer {
	b.Meta[key] = value
	return b
}
