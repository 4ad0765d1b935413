package services

import (
	"context"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// TranslationService is the pluggable text-translation backend a
// TranslationTransform drives. Grounded on
// original_source/vpipe/capsules/services/tran.py. No concrete provider is
// implemented here (§1 Non-goals); see internal/providers.
type TranslationService interface {
	Translate(ctx context.Context, srcLang, destLang, text string) (string, error)
}

// TranslationTransform fills in TranslatedText on a Payload carrying
// recognized origin text, targeting destLang. Properties: "src-lang",
// "dest-lang". Grounded on
// original_source/vpipe/capsules/services/tran.py.
type TranslationTransform struct {
	*core.BaseTransform

	service  TranslationService
	srcLang  string
	destLang string
}

// NewTranslationTransform creates a translation transform targeting
// destLang via service.
func NewTranslationTransform(name, destLang string, service TranslationService) *TranslationTransform {
	t := &TranslationTransform{service: service, destLang: destLang}
	t.BaseTransform = core.NewBaseTransform("TranslationTransform", name, t)
	return t
}

func (t *TranslationTransform) Start(ctx context.Context) error { return nil }
func (t *TranslationTransform) Stop(ctx context.Context) error  { return nil }

// SetProp sets "src-lang" or "dest-lang" (both strings).
func (t *TranslationTransform) SetProp(key string, value any) error {
	lang, ok := value.(string)
	if !ok {
		return &core.ConfigError{Key: key}
	}
	switch key {
	case "src-lang":
		t.srcLang = lang
		return nil
	case "dest-lang":
		t.destLang = lang
		return nil
	default:
		return &core.ConfigError{Key: key}
	}
}

// Transform satisfies core.TransformOps. srcLang, when set via SetProp,
// overrides the Payload's own SrcLang (matching the original's fixed
// self.src); left unset, the Payload's recognized language is used.
func (t *TranslationTransform) Transform(ctx context.Context, data any) (any, error) {
	p, ok := data.(*Payload)
	if !ok {
		return nil, nil
	}
	srcLang := t.srcLang
	if srcLang == "" {
		srcLang = p.SrcLang
	}
	translated, err := t.service.Translate(ctx, srcLang, t.destLang, p.OriginText)
	if err != nil {
		return nil, &core.ServiceError{Service: "translation", Op: "translate", Err: err}
	}
	out := p.Clone()
	out.DestLang = t.destLang
	out.TranslatedText = translated
	return out, nil
}
