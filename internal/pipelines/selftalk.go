package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// SelfTalkPipeline captures the local mic and plays the translated (plus
// original, mixed) audio back to the local speaker, for practicing a
// language alone without a remote party. Grounded on
// original_source/pipelines/selftalk_pipeline.py.
type SelfTalkPipeline struct {
	*core.Pipeline

	src        *audio.MicSource
	translator *AugmentedSpeechTranslator
	sink       *audio.SpeakerSink
}

// NewSelfTalkPipeline builds mic-source -> augmented translator ->
// speaker-sink.
func NewSelfTalkPipeline(
	name string,
	cfg core.AudioConfig,
	micDevice string,
	micBuilder audio.CommandBuilder,
	speakerDevice string,
	speakerBuilder audio.CommandBuilder,
	srcLang, destLang string,
	asrSvc services.ASRService,
	tranSvc services.TranslationService,
	ttsSvc services.TTSService,
	queueSize, playerBufferFrames int,
) (*SelfTalkPipeline, error) {
	s := &SelfTalkPipeline{}
	s.Pipeline = core.NewPipeline("SelfTalkPipeline", name)

	s.src = audio.NewMicSource("mic", cfg, micDevice, micBuilder)
	translator, err := NewAugmentedSpeechTranslator("translator", cfg, srcLang, destLang, asrSvc, tranSvc, ttsSvc, queueSize, playerBufferFrames)
	if err != nil {
		return nil, err
	}
	s.translator = translator
	s.sink = audio.NewSpeakerSink("speaker", cfg, speakerDevice, speakerBuilder)

	s.Adds(s.src, s.translator, s.sink)

	w := &wirer{}
	w.link(s.src.Out(), s.translator)
	tOut, _ := s.translator.GetOutput("out")
	w.link(tOut, s.sink)
	if w.err != nil {
		return nil, w.err
	}

	asrScript, _ := s.translator.GetOutput("asr_script")
	tranScript, _ := s.translator.GetOutput("tran_script")
	s.ExposeOutput("asr_script", asrScript)
	s.ExposeOutput("tran_script", tranScript)

	return s, nil
}

// SetProp delegates to the inner AugmentedSpeechTranslator's property
// surface.
func (s *SelfTalkPipeline) SetProp(key string, value any) error {
	return s.translator.SetProp(key, value)
}
