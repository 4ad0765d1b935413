package services

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// DirectionTagger stamps every Payload passing through with a fixed
// Direction, letting a downstream consumer merged from multiple sources
// tell them apart. Grounded on
// original_source/pipelines/dualstream_pipeline.py's PayloadHandlerWrapper,
// which wraps a script callback to the same effect; here it's a capsule so
// the tagging survives a plain port Link-based merge.
type DirectionTagger struct {
	*core.BaseTransform

	direction Direction
}

// NewDirectionTagger creates a tagger stamping every Payload with direction.
func NewDirectionTagger(name string, direction Direction) *DirectionTagger {
	t := &DirectionTagger{direction: direction}
	t.BaseTransform = core.NewBaseTransform("DirectionTagger", name, t)
	return t
}

func (t *DirectionTagger) Start(ctx context.Context) error { return nil }
func (t *DirectionTagger) Stop(ctx context.Context) error  { return nil }

func (t *DirectionTagger) Transform(ctx context.Context, data any) (any, error) {
	p, ok := data.(*Payload)
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	out.Direction = t.direction
	return out, nil
}
