package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// DownStreamPipeline listens to a remote party's voice (via a virtual
// speaker device) and plays it back translated into the local listener's
// language. Grounded on
// original_source/pipelines/downstream_pipeline.py.
type DownStreamPipeline struct {
	*core.Pipeline

	src        *audio.VirtualSpeakerSource
	translator *AugmentedSpeechTranslator
	sink       *audio.SpeakerSink
}

// NewDownStreamPipeline builds virtual-speaker-source -> augmented
// translator -> speaker-sink.
func NewDownStreamPipeline(
	name string,
	cfg core.AudioConfig,
	client audio.VirtualDeviceClient,
	speakerDevice string,
	speakerBuilder audio.CommandBuilder,
	srcLang, destLang string,
	asrSvc services.ASRService,
	tranSvc services.TranslationService,
	ttsSvc services.TTSService,
	queueSize, playerBufferFrames int,
) (*DownStreamPipeline, error) {
	d := &DownStreamPipeline{}
	d.Pipeline = core.NewPipeline("DownStreamPipeline", name)

	d.src = audio.NewVirtualSpeakerSource("remote-src", cfg, client)
	translator, err := NewAugmentedSpeechTranslator("translator", cfg, srcLang, destLang, asrSvc, tranSvc, ttsSvc, queueSize, playerBufferFrames)
	if err != nil {
		return nil, err
	}
	d.translator = translator
	d.sink = audio.NewSpeakerSink("speaker", cfg, speakerDevice, speakerBuilder)

	d.Adds(d.src, d.translator, d.sink)

	w := &wirer{}
	w.link(d.src.Out(), d.translator)
	tOut, _ := d.translator.GetOutput("out")
	w.link(tOut, d.sink)
	if w.err != nil {
		return nil, w.err
	}

	asrScript, _ := d.translator.GetOutput("asr_script")
	tranScript, _ := d.translator.GetOutput("tran_script")
	d.ExposeOutput("asr_script", asrScript)
	d.ExposeOutput("tran_script", tranScript)

	return d, nil
}

// SetProp delegates to the inner AugmentedSpeechTranslator's property
// surface.
func (d *DownStreamPipeline) SetProp(key string, value any) error {
	return d.translator.SetProp(key, value)
}
