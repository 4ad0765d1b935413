// Package pipelines assembles the vpipe capsules into the six named
// pipeline shapes: SpeechTranslator, AugmentedSpeechTranslator,
// DownStreamPipeline, UpStreamPipeline, DualStreamPipeline and
// SelfTalkPipeline. Grounded on original_source/pipelines/*.py.
package pipelines

import "github.com/duynv223/talklink/internal/vpipe/core"

// wirer accumulates the first error from a sequence of port links, so
// constructors can wire a whole topology and check once at the end instead
// of after every call.
type wirer struct {
	err error
}

func (w *wirer) link(from *core.Port, to any) {
	if w.err != nil {
		return
	}
	w.err = from.Link(to)
}
