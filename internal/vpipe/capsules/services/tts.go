package services

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// TTSService is the pluggable speech-synthesis backend a TTSTransform
// drives. ref_voice/speaker_id (origin audio and speaker label from the
// recognized Payload) let a provider clone the original speaker's voice;
// a provider that ignores both is free to do so. Grounded on
// original_source/vpipe/capsules/services/tts.py. No concrete provider is
// implemented here (§1 Non-goals); see internal/providers.
type TTSService interface {
	Synthesize(ctx context.Context, lang, text string, refVoice *core.PCM, speakerID string) (*core.PCM, error)
}

// TTSTransform fills in TranslatedAudio on a Payload carrying translated
// text. Properties: "enable" (bool), "lang" (the destination language
// passed to the service; the Payload's own DestLang still wins if set).
type TTSTransform struct {
	*core.BaseTransform

	service TTSService
	lang    string
	enable  bool
}

// NewTTSTransform creates a TTS transform synthesizing audio via service.
// enable defaults to true.
func NewTTSTransform(name string, service TTSService) *TTSTransform {
	t := &TTSTransform{service: service, enable: true}
	t.BaseTransform = core.NewBaseTransform("TTSTransform", name, t)
	return t
}

func (t *TTSTransform) Start(ctx context.Context) error { return nil }
func (t *TTSTransform) Stop(ctx context.Context) error  { return nil }

// SetProp sets "enable" (bool) or "lang" (string). Grounded on
// original_source/vpipe/capsules/services/tts.py's set_prop.
func (t *TTSTransform) SetProp(key string, value any) error {
	switch key {
	case "enable":
		enable, ok := value.(bool)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		t.enable = enable
		return nil
	case "lang":
		lang, ok := value.(string)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		t.lang = lang
		return nil
	default:
		return &core.ConfigError{Key: key}
	}
}

// Transform satisfies core.TransformOps. It only synthesizes when enabled,
// the payload is final, and it carries translated text; otherwise nothing
// is emitted, per original_source/vpipe/capsules/services/tts.py's
// transform guard (no else branch: a disabled or not-yet-final payload is
// silently dropped, not forwarded).
func (t *TTSTransform) Transform(ctx context.Context, data any) (any, error) {
	p, ok := data.(*Payload)
	if !ok {
		return nil, nil
	}
	if !t.enable || !p.IsFinal || p.TranslatedText == "" {
		return nil, nil
	}
	lang := p.DestLang
	if lang == "" {
		lang = t.lang
	}
	audio, err := t.service.Synthesize(ctx, lang, p.TranslatedText, p.OriginAudio, p.Speaker)
	if err != nil {
		return nil, &core.ServiceError{Service: "tts", Op: "synthesize", Err: err}
	}
	out := p.Clone()
	out.TranslatedAudio = audio
	return out, nil
}

// PayloadAudioExtractor unwraps a Payload's TranslatedAudio into a bare
// *core.PCM for the capsules further downstream (a QueuePlayer, a speaker
// sink) that only understand raw audio. A Payload with no synthesized
// audio yet is swallowed rather than pushing a nil block.
type PayloadAudioExtractor struct {
	*core.BaseTransform
}

// NewPayloadAudioExtractor creates an extractor transform.
func NewPayloadAudioExtractor(name string) *PayloadAudioExtractor {
	e := &PayloadAudioExtractor{}
	e.BaseTransform = core.NewBaseTransform("PayloadAudioExtractor", name, e)
	return e
}

func (e *PayloadAudioExtractor) Start(ctx context.Context) error { return nil }
func (e *PayloadAudioExtractor) Stop(ctx context.Context) error  { return nil }

func (e *PayloadAudioExtractor) Transform(ctx context.Context, data any) (any, error) {
	p, ok := data.(*Payload)
	if !ok || p.TranslatedAudio == nil {
		return nil, nil
	}
	return p.TranslatedAudio, nil
}
