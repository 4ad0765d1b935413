// Package echotranslate is an illustrative TranslationService reference
// implementation: a static phrase dictionary with a passthrough fallback.
// It exists to exercise the translation plug-point end to end in tests and
// the CLI demo, not as a production translation provider (those are out of
// scope). Grounded on the "Translate" shape of
// original_source/vpipe/capsules/services/tran.py.
package echotranslate

import (
	"context"
	"fmt"
	"sync"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// Dictionary maps a (srcLang, destLang, text) phrase to its translation.
type Dictionary map[phraseKey]string

type phraseKey struct {
	srcLang, destLang, text string
}

// Translator looks phrases up in a static dictionary, falling back to
// prefixing the origin text with the destination language tag when no
// entry matches, so it always returns something observable in a demo run.
type Translator struct {
	mu   sync.RWMutex
	dict Dictionary
}

// New creates a Translator seeded with dict (may be nil).
func New(dict Dictionary) *Translator {
	if dict == nil {
		dict = Dictionary{}
	}
	return &Translator{dict: dict}
}

// Set adds or replaces a dictionary entry.
func (t *Translator) Set(srcLang, destLang, text, translated string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dict[phraseKey{srcLang, destLang, text}] = translated
}

// Translate satisfies services.TranslationService.
func (t *Translator) Translate(ctx context.Context, srcLang, destLang, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	t.mu.RLock()
	translated, ok := t.dict[phraseKey{srcLang, destLang, text}]
	t.mu.RUnlock()
	if ok {
		return translated, nil
	}
	select {
	case <-ctx.Done():
		return "", &core.ServiceError{Service: "translation", Op: "translate", Err: ctx.Err()}
	default:
	}
	return fmt.Sprintf("[%s] %s", destLang, text), nil
}
