package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// AugmentedSpeechTranslator forks its input into an unmodified branch and a
// translated branch (via SpeechTranslator), then mixes both back together
// at independently controllable volumes — so a listener hears the original
// voice under the translated one instead of losing it entirely. Grounded on
// original_source/pipelines/augmented_speech_translator.py; SPEC_FULL §3
// names this as a restored feature the distillation only implies.
type AugmentedSpeechTranslator struct {
	*core.Composite

	st        *SpeechTranslator
	player    *audio.QueuePlayer
	srcVolume *audio.Volume
	ttsVolume *audio.Volume
	mixer     *audio.Mixer
}

// NewAugmentedSpeechTranslator builds the fork/translate/mix topology.
func NewAugmentedSpeechTranslator(
	name string,
	cfg core.AudioConfig,
	srcLang, destLang string,
	asrSvc services.ASRService,
	tranSvc services.TranslationService,
	ttsSvc services.TTSService,
	queueSize int,
	playerBufferFrames int,
) (*AugmentedSpeechTranslator, error) {
	a := &AugmentedSpeechTranslator{}
	a.Composite = core.NewComposite("AugmentedSpeechTranslator", name)

	fork := core.NewFork("fork")
	a.srcVolume = audio.NewVolume("src-volume")
	a.ttsVolume = audio.NewVolume("tts-volume")
	a.player = audio.NewQueuePlayer("player", cfg, playerBufferFrames)
	a.mixer = audio.NewMixer("mixer", cfg.Format.Channels)

	st, err := NewSpeechTranslator(name+"-translator", srcLang, destLang, asrSvc, tranSvc, ttsSvc, queueSize)
	if err != nil {
		return nil, err
	}
	a.st = st

	a.Adds(fork, a.srcVolume, a.st, a.player, a.ttsVolume, a.mixer)

	w := &wirer{}
	srcOut := fork.ForkOutput("src")
	toTranslate := fork.ForkOutput("to-translate")
	w.link(srcOut, a.srcVolume)
	w.link(toTranslate, a.st)

	stOut, _ := a.st.GetOutput("out")
	w.link(stOut, a.player)

	mixerSrc := a.mixer.AddMixInput("src")
	mixerTTS := a.mixer.AddMixInput("tts")
	w.link(a.srcVolume.Out(), mixerSrc)
	w.link(a.ttsVolume.Out(), mixerTTS)

	playerOut := a.player.Out()
	w.link(playerOut, a.ttsVolume)

	if w.err != nil {
		return nil, w.err
	}

	forkIn, _ := fork.GetInput("in")
	a.ExposeInput("in", forkIn)
	mixerOut, _ := a.mixer.GetOutput("out")
	a.ExposeOutput("out", mixerOut)
	asrScript, _ := a.st.GetOutput("asr_script")
	tranScript, _ := a.st.GetOutput("tran_script")
	a.ExposeOutput("asr_script", asrScript)
	a.ExposeOutput("tran_script", tranScript)

	return a, nil
}

// SetProp handles src-volume/tts-volume/src-mute/tts-mute/tts-enable/
// tts-speed directly and delegates anything else (src-lang, dest-lang,
// asr-enable) to the inner SpeechTranslator. Grounded on
// original_source/pipelines/augmented_speech_translator.py's set_prop.
func (a *AugmentedSpeechTranslator) SetProp(key string, value any) error {
	switch key {
	case "src-volume":
		gain, ok := value.(float64)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		a.srcVolume.SetGain(gain)
		return nil
	case "tts-volume":
		gain, ok := value.(float64)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		a.ttsVolume.SetGain(gain)
		return nil
	case "src-mute":
		mute, ok := value.(bool)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		a.srcVolume.SetMute(mute)
		return nil
	case "tts-mute":
		mute, ok := value.(bool)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		a.ttsVolume.SetMute(mute)
		return nil
	case "tts-enable":
		enable, ok := value.(bool)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		a.ttsVolume.SetMute(!enable)
		return a.st.SetProp("tts-enable", enable)
	case "tts-speed":
		speed, ok := value.(float64)
		if !ok {
			return &core.ConfigError{Key: key}
		}
		return a.player.SetProp("speed", speed)
	default:
		return a.st.SetProp(key, value)
	}
}
