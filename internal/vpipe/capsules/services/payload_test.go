package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func TestNewPayload_StampsIDAndTimestamp(t *testing.T) {
	p := NewPayload("en")
	assert.Equal(t, "en", p.SrcLang)
	assert.NotEqual(t, p.ID.String(), "")
	assert.False(t, p.Timestamp.IsZero())
}

func TestPayload_CloneIsIndependentCopy(t *testing.T) {
	p := NewPayload("en")
	p.OriginText = "hello"

	cp := p.Clone()
	cp.OriginText = "changed"
	cp.TranslatedText = "bonjour"

	assert.Equal(t, "hello", p.OriginText)
	assert.Equal(t, "changed", cp.OriginText)
	assert.Equal(t, "", p.TranslatedText)
	require.Equal(t, p.ID, cp.ID)
}

func TestPayload_CloneSharesAudioPointer(t *testing.T) {
	p := NewPayload("en")
	p.OriginAudio = &core.PCM{Samples: []int16{1, 2}, Channels: 1}

	cp := p.Clone()
	assert.Same(t, p.OriginAudio, cp.OriginAudio)
}
