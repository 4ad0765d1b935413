package audio

import (
	"context"
	"math"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// RMS is a metering transform: it passes PCM through unchanged while
// publishing a normalized-to-[0,1] RMS level as a property and a signal on
// every block, for level-meter UIs or auto-gain logic. Grounded on
// original_source/vpipe/capsules/audio/rms_transform.py.
type RMS struct {
	*core.BaseTransform
}

// NewRMS creates an RMS metering transform.
func NewRMS(name string) *RMS {
	r := &RMS{}
	r.BaseTransform = core.NewBaseTransform("RMS", name, r)
	return r
}

func (r *RMS) Start(ctx context.Context) error { return nil }
func (r *RMS) Stop(ctx context.Context) error  { return nil }

// Transform satisfies core.TransformOps: computes and publishes the RMS
// level, then passes the block through unmodified.
func (r *RMS) Transform(ctx context.Context, data any) (any, error) {
	chunk, ok := data.(*core.PCM)
	if !ok {
		return data, nil
	}
	level := Level(*chunk)
	r.SetProperty("level", level)
	r.EmitSignal("level", level)
	return chunk, nil
}

// Level computes a block's RMS amplitude over all of its samples, normalized
// to [0,1] against the full int16 range. Interleaved channels are pooled into
// one RMS; no per-channel RMS is computed or averaged.
func Level(chunk core.PCM) float64 {
	if len(chunk.Samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range chunk.Samples {
		v := float64(s)
		sumSquares += v * v
	}
	rms := math.Sqrt(sumSquares / float64(len(chunk.Samples)))
	return rms / math.MaxInt16
}
