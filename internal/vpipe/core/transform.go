package core

import "context"

// TransformOps is implemented by a concrete transform (Volume, RMS,
// ASRTransform, CacheResampler...) and supplied to NewBaseTransform.
// Transform returning (nil, nil) swallows the input (e.g. FinalOnlyFilter
// dropping an interim payload) without pushing anything downstream.
type TransformOps interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Transform(ctx context.Context, data any) (any, error)
}

// BaseTransform is the standard capsule shape for a single-in/single-out
// processing step. Grounded on original_source/vpipe/core/transform.py.
type BaseTransform struct {
	*BaseCapsule

	ops TransformOps
	in  *Port
	out *Port
}

// NewBaseTransform wires ops as the transform's Start/Stop/Transform
// implementation.
func NewBaseTransform(kind, name string, ops TransformOps) *BaseTransform {
	t := &BaseTransform{BaseCapsule: NewBaseCapsule(kind, name), ops: ops}
	t.in = t.AddInput("in", t.handleInput)
	t.out = t.AddOutput("out")
	t.out.SetActivateHandler(t.portActive)
	return t
}

// In returns the transform's input port.
func (t *BaseTransform) In() *Port { return t.in }

// Out returns the transform's output port.
func (t *BaseTransform) Out() *Port { return t.out }

func (t *BaseTransform) portActive(ctx context.Context, active bool) error {
	if active {
		return t.ops.Start(ctx)
	}
	return t.ops.Stop(ctx)
}

func (t *BaseTransform) handleInput(ctx context.Context, _ string, data any) error {
	out, err := t.ops.Transform(ctx, data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return t.out.Push(ctx, out)
}
