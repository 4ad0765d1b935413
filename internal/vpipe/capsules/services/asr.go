package services

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// TranscribeResult is one recognition update out of an ASRService: either an
// interim or a final result for the utterance currently in progress. It is
// not a Payload — ASRTransform owns merging a stream of these into its
// work-in-progress Payload. Grounded on original_source/vpipe/capsules/
// services/asr.py's transcribe() returning a bare {text, is_final} tuple.
type TranscribeResult struct {
	Text        string
	IsFinal     bool
	Speaker     string
	OriginAudio *core.PCM
}

// ASRService is the pluggable speech-recognition backend an ASRTransform
// drives: Start begins a recognition session for a language, Transcribe
// streams one audio block in and returns a recognition result when one is
// available (nil if the block produced nothing yet), Stop ends the session.
// Grounded on original_source/vpipe/capsules/services/asr.py. No concrete
// provider is implemented here (§1 Non-goals); see internal/providers.
type ASRService interface {
	Start(ctx context.Context, srcLang string) error
	Stop(ctx context.Context) error
	Transcribe(ctx context.Context, chunk *core.PCM) (*TranscribeResult, error)
}

// LanguageSwitcher is an optional capability an ASRService may implement to
// change its recognition language without a full stop/start cycle. Grounded
// on original_source/vpipe/capsules/services/asr.py's
// `ASRServiceInterface.switch_lang`, which raises NotImplementedError by
// default; a service that doesn't implement this interface gets restarted
// instead.
type LanguageSwitcher interface {
	SwitchLang(ctx context.Context, lang string) error
}

// ASRTransform adapts an ASRService into the capsule graph: its input is
// raw PCM, its output is the work-in-progress Payload for the utterance in
// progress (interim or final) for each input block that yields a result, or
// nothing at all for a block the service returns no result for.
type ASRTransform struct {
	*core.BaseTransform

	service ASRService
	srcLang string
	enable  bool

	wip *Payload
}

// NewASRTransform creates an ASR transform recognizing srcLang speech via
// service. enable defaults to true.
func NewASRTransform(name, srcLang string, service ASRService) *ASRTransform {
	t := &ASRTransform{service: service, srcLang: srcLang, enable: true}
	t.BaseTransform = core.NewBaseTransform("ASRTransform", name, t)
	return t
}

func (t *ASRTransform) Start(ctx context.Context) error {
	return t.service.Start(ctx, t.srcLang)
}

func (t *ASRTransform) Stop(ctx context.Context) error {
	return t.service.Stop(ctx)
}

// SetProp sets "enable" (bool) or "lang" (string). Grounded on
// original_source/vpipe/capsules/services/asr.py's set_prop.
func (t *ASRTransform) SetProp(key string, value any) error {
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
		return t.setLang(lang)
	default:
		return &core.ConfigError{Key: key}
	}
}

// setLang switches the recognition language in place via LanguageSwitcher
// when the service supports it, falling back to a stop/start restart
// otherwise (with audio silenced for the duration, per restart below).
func (t *ASRTransform) setLang(lang string) error {
	t.srcLang = lang
	if switcher, ok := t.service.(LanguageSwitcher); ok {
		if err := switcher.SwitchLang(context.Background(), lang); err == nil {
			return nil
		}
	}
	return t.restart()
}

// restart stops and restarts the service to apply a language change the
// service couldn't switch to live, muting it (via zero-filled audio) for
// the duration so a caller still feeding the transform doesn't see errors.
func (t *ASRTransform) restart() error {
	ctx := context.Background()
	enabled := t.enable
	t.enable = false
	if err := t.Stop(ctx); err != nil {
		return &core.ServiceError{Service: "asr", Op: "restart-stop", Err: err}
	}
	if err := t.Start(ctx); err != nil {
		return &core.ServiceError{Service: "asr", Op: "restart-start", Err: err}
	}
	t.enable = enabled
	return nil
}

// Transform satisfies core.TransformOps. When disabled, the input chunk is
// replaced with zeros before being fed to the service, keeping the service
// connection alive without recognizing real audio. A non-nil result is
// merged into the work-in-progress Payload (updating origin_text, is_final,
// speaker, origin_audio, src_lang); on a final result the completed Payload
// is returned and a fresh WIP started, otherwise the WIP itself is returned
// to allow interim rendering. Grounded on original_source/vpipe/capsules/
// services/asr.py's transform().
func (t *ASRTransform) Transform(ctx context.Context, data any) (any, error) {
	chunk, ok := data.(*core.PCM)
	if !ok {
		return nil, nil
	}
	if !t.enable {
		silence := core.Silence(chunk.Frames(), chunk.Channels)
		chunk = &silence
	}
	result, err := t.service.Transcribe(ctx, chunk)
	if err != nil {
		return nil, &core.ServiceError{Service: "asr", Op: "transcribe", Err: err}
	}
	if result == nil {
		return nil, nil
	}

	if t.wip == nil {
		t.wip = NewPayload(t.srcLang)
	}
	t.wip.IsFinal = result.IsFinal
	t.wip.OriginText = result.Text
	t.wip.Speaker = result.Speaker
	t.wip.OriginAudio = result.OriginAudio
	t.wip.SrcLang = t.srcLang

	if t.wip.IsFinal {
		complete := t.wip
		t.wip = nil
		return complete, nil
	}
	return t.wip, nil
}
