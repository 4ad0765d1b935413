package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// UpStreamPipeline captures the local speaker's own voice and publishes it
// translated to a virtual microphone, so a remote party hears the other
// language. Grounded on original_source/pipelines/upstream_pipeline.py.
type UpStreamPipeline struct {
	*core.Pipeline

	src        *audio.MicSource
	translator *AugmentedSpeechTranslator
	sink       *audio.VirtualMicSink
}

// NewUpStreamPipeline builds mic-source -> augmented translator ->
// virtual-mic-sink.
func NewUpStreamPipeline(
	name string,
	cfg core.AudioConfig,
	micDevice string,
	micBuilder audio.CommandBuilder,
	client audio.VirtualDeviceClient,
	srcLang, destLang string,
	asrSvc services.ASRService,
	tranSvc services.TranslationService,
	ttsSvc services.TTSService,
	queueSize, playerBufferFrames int,
) (*UpStreamPipeline, error) {
	u := &UpStreamPipeline{}
	u.Pipeline = core.NewPipeline("UpStreamPipeline", name)

	u.src = audio.NewMicSource("mic", cfg, micDevice, micBuilder)
	translator, err := NewAugmentedSpeechTranslator("translator", cfg, srcLang, destLang, asrSvc, tranSvc, ttsSvc, queueSize, playerBufferFrames)
	if err != nil {
		return nil, err
	}
	u.translator = translator
	u.sink = audio.NewVirtualMicSink("virtual-mic", cfg, client)

	u.Adds(u.src, u.translator, u.sink)

	w := &wirer{}
	w.link(u.src.Out(), u.translator)
	tOut, _ := u.translator.GetOutput("out")
	w.link(tOut, u.sink)
	if w.err != nil {
		return nil, w.err
	}

	asrScript, _ := u.translator.GetOutput("asr_script")
	tranScript, _ := u.translator.GetOutput("tran_script")
	u.ExposeOutput("asr_script", asrScript)
	u.ExposeOutput("tran_script", tranScript)

	return u, nil
}

// SetProp delegates to the inner AugmentedSpeechTranslator's property
// surface.
func (u *UpStreamPipeline) SetProp(key string, value any) error {
	return u.translator.SetProp(key, value)
}
