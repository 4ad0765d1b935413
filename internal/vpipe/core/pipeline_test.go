package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPipeline_AttachesItsOwnBus(t *testing.T) {
	p := NewPipeline("Pipeline", "p1")
	assert.NotNil(t, p.Bus())
}

func TestNewPipeline_BubblesChildMessages(t *testing.T) {
	p := NewPipeline("Pipeline", "p1")
	child := NewBaseCapsule("Test", "child")
	p.Add(child)

	var got Message
	p.Bus().AddWatch(func(m Message) { got = m })
	child.PostMessage("ping", 1)

	assert.Equal(t, "ping", got.Kind)
}
