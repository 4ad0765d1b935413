package services

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// FinalOnlyFilter drops every non-final ASR result, so translation and TTS
// downstream only ever see a payload once, on finality — named
// TextCompleteFilter in original_source/pipelines/speech_translator.py.
// spec.md §3 names this requirement without giving it a component; this is
// that component (SPEC_FULL §3).
type FinalOnlyFilter struct {
	*core.BaseTransform
}

// NewFinalOnlyFilter creates a final-only filter transform.
func NewFinalOnlyFilter(name string) *FinalOnlyFilter {
	f := &FinalOnlyFilter{}
	f.BaseTransform = core.NewBaseTransform("FinalOnlyFilter", name, f)
	return f
}

func (f *FinalOnlyFilter) Start(ctx context.Context) error { return nil }
func (f *FinalOnlyFilter) Stop(ctx context.Context) error  { return nil }

func (f *FinalOnlyFilter) Transform(ctx context.Context, data any) (any, error) {
	p, ok := data.(*Payload)
	if !ok || !p.IsFinal {
		return nil, nil
	}
	return p, nil
}
