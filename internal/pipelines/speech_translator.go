package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// SpeechTranslator is the core ASR -> translate -> TTS assembly: audio in,
// translated audio out, with asr_script/tran_script taps exposing the
// recognized and translated text as they're produced. Grounded on
// original_source/pipelines/speech_translator.py.
type SpeechTranslator struct {
	*core.Composite

	q1, q2, q3 *core.Queue
	asr        *services.ASRTransform
	filter     *services.FinalOnlyFilter
	tran       *services.TranslationTransform
	tts        *services.TTSTransform
	extractor  *services.PayloadAudioExtractor
}

// NewSpeechTranslator builds a speech translator recognizing srcLang and
// producing destLang audio, queueing queueSize items between each stage
// under the upstream-drop backpressure policy.
func NewSpeechTranslator(name, srcLang, destLang string, asrSvc services.ASRService, tranSvc services.TranslationService, ttsSvc services.TTSService, queueSize int) (*SpeechTranslator, error) {
	st := &SpeechTranslator{}
	st.Composite = core.NewComposite("SpeechTranslator", name)

	st.q1 = core.NewQueue("q1", queueSize, core.DrainUpstream)
	st.asr = services.NewASRTransform("asr", srcLang, asrSvc)
	asrFork := core.NewFork("asr-fork")
	st.filter = services.NewFinalOnlyFilter("final-only")
	st.q2 = core.NewQueue("q2", queueSize, core.DrainUpstream)
	st.tran = services.NewTranslationTransform("translate", destLang, tranSvc)
	tranFork := core.NewFork("tran-fork")
	st.q3 = core.NewQueue("q3", queueSize, core.DrainUpstream)
	st.tts = services.NewTTSTransform("tts", ttsSvc)
	st.extractor = services.NewPayloadAudioExtractor("extract-audio")

	st.Adds(st.q1, st.asr, asrFork, st.filter, st.q2, st.tran, tranFork, st.q3, st.tts, st.extractor)

	w := &wirer{}
	q1Out, _ := st.q1.GetOutput("out")
	w.link(q1Out, st.asr)
	w.link(st.asr.Out(), asrFork)

	asrScript := asrFork.ForkOutput("script")
	toFilter := asrFork.ForkOutput("filter")
	w.link(toFilter, st.filter)
	w.link(st.filter.Out(), st.q2)

	q2Out, _ := st.q2.GetOutput("out")
	w.link(q2Out, st.tran)
	w.link(st.tran.Out(), tranFork)

	tranScript := tranFork.ForkOutput("script")
	toTTSQueue := tranFork.ForkOutput("tts")
	w.link(toTTSQueue, st.q3)

	q3Out, _ := st.q3.GetOutput("out")
	w.link(q3Out, st.tts)
	w.link(st.tts.Out(), st.extractor)

	if w.err != nil {
		return nil, w.err
	}

	q1In, _ := st.q1.GetInput("in")
	st.ExposeInput("in", q1In)
	st.ExposeOutput("out", st.extractor.Out())
	st.ExposeOutput("asr_script", asrScript)
	st.ExposeOutput("tran_script", tranScript)

	return st, nil
}

// SetProp routes a property write to the right child, returning
// core.ConfigError for an unrecognized key. Grounded on
// original_source/pipelines/speech_translator.py's set_prop: src-lang
// propagates to both the ASR and translation stages, dest-lang to both
// translation and TTS, asr-enable/tts-enable to their respective stage.
func (st *SpeechTranslator) SetProp(key string, value any) error {
	switch key {
	case "src-lang":
		lang, ok := value.(string)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		if err := st.asr.SetProp("lang", lang); err != nil {
			return err
		}
		return st.tran.SetProp("src-lang", lang)
	case "dest-lang":
		lang, ok := value.(string)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		if err := st.tran.SetProp("dest-lang", lang); err != nil {
			return err
		}
		return st.tts.SetProp("lang", lang)
	case "asr-enable":
		return st.asr.SetProp("enable", value)
	case "tts-enable":
		return st.tts.SetProp("enable", value)
	default:
		return &core.ConfigError{Key: key}
	}
}
