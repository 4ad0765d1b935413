package core

// Pipeline is a top-level Composite: the root of a capsule tree, owning its
// own freshly instantiated Bus rather than bubbling into a parent's.
// Grounded on original_source/vpipe/core/pipeline.py.
type Pipeline struct {
	*Composite
}

// NewPipeline creates a pipeline with a new bus already attached.
func NewPipeline(kind, name string) *Pipeline {
	p := &Pipeline{Composite: NewComposite(kind, name)}
	p.SetBus(NewBus(name + "-bus"))
	return p
}
