// Package services implements the speech-translation domain capsules:
// Payload, the ASR/translation/TTS transform shapes and their pluggable
// service interfaces, and FinalOnlyFilter.
package services

import (
	"time"

	"github.com/duynv223/talklink/internal/vpipe/core"
	"github.com/google/uuid"
)

// Direction tags which side of a two-way conversation a Payload came from,
// used by DualStreamPipeline to label transcript callbacks. Grounded on
// original_source/pipelines/dualstream_pipeline.py's PayloadHandlerWrapper.
type Direction string

const (
	DirectionUnspecified Direction = ""
	DirectionThem        Direction = "them"
	DirectionYou         Direction = "you"
)

// Payload is the unit of data flowing through the speech-translation
// capsules: a speech segment's recognized text and audio, and its
// translated counterpart once produced. Grounded on
// original_source/vpipe/capsules/services/payload.py.
type Payload struct {
	ID        uuid.UUID
	Timestamp time.Time

	SrcLang  string
	DestLang string

	OriginText  string
	OriginAudio *core.PCM

	IsFinal bool
	Speaker string

	TranslatedText  string
	TranslatedAudio *core.PCM

	Direction Direction
}

// NewPayload stamps a fresh Payload with a random ID and the current time.
func NewPayload(srcLang string) *Payload {
	return &Payload{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		SrcLang:   srcLang,
	}
}

// Clone returns a shallow copy, safe for a transform to mutate and forward
// without affecting a caller still holding the original.
func (p *Payload) Clone() *Payload {
	cp := *p
	return &cp
}
