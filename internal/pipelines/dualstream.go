package pipelines

import (
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// DualStreamPipeline runs an UpStreamPipeline and a DownStreamPipeline at
// once (a two-way conversation), merging each side's script taps into a
// shared asr_script/tran_script pair with every Payload tagged "you" or
// "them" so a transcript consumer can tell which side produced it.
// Grounded on original_source/pipelines/dualstream_pipeline.py.
type DualStreamPipeline struct {
	*core.Pipeline

	up   *UpStreamPipeline
	down *DownStreamPipeline
}

// NewDualStreamPipeline builds both directions and wires the direction-
// tagged script merge.
func NewDualStreamPipeline(
	name string,
	cfg core.AudioConfig,
	micDevice string,
	micBuilder audio.CommandBuilder,
	speakerDevice string,
	speakerBuilder audio.CommandBuilder,
	virtualMicClient audio.VirtualDeviceClient,
	virtualSpeakerClient audio.VirtualDeviceClient,
	localLang, remoteLang string,
	upAsr services.ASRService, upTran services.TranslationService, upTts services.TTSService,
	downAsr services.ASRService, downTran services.TranslationService, downTts services.TTSService,
	queueSize, playerBufferFrames int,
) (*DualStreamPipeline, error) {
	d := &DualStreamPipeline{}
	d.Pipeline = core.NewPipeline("DualStreamPipeline", name)

	up, err := NewUpStreamPipeline(name+"-up", cfg, micDevice, micBuilder, virtualMicClient, localLang, remoteLang, upAsr, upTran, upTts, queueSize, playerBufferFrames)
	if err != nil {
		return nil, err
	}
	down, err := NewDownStreamPipeline(name+"-down", cfg, virtualSpeakerClient, speakerDevice, speakerBuilder, remoteLang, localLang, downAsr, downTran, downTts, queueSize, playerBufferFrames)
	if err != nil {
		return nil, err
	}
	d.up, d.down = up, down

	tagYouAsr := services.NewDirectionTagger("tag-you-asr", services.DirectionYou)
	tagYouTran := services.NewDirectionTagger("tag-you-tran", services.DirectionYou)
	tagThemAsr := services.NewDirectionTagger("tag-them-asr", services.DirectionThem)
	tagThemTran := services.NewDirectionTagger("tag-them-tran", services.DirectionThem)

	d.Adds(up, down, tagYouAsr, tagYouTran, tagThemAsr, tagThemTran)

	mergeAsr := core.NewPort("asr_script")
	mergeTran := core.NewPort("tran_script")

	w := &wirer{}
	upAsrScript, _ := up.GetOutput("asr_script")
	upTranScript, _ := up.GetOutput("tran_script")
	downAsrScript, _ := down.GetOutput("asr_script")
	downTranScript, _ := down.GetOutput("tran_script")

	w.link(upAsrScript, tagYouAsr)
	w.link(upTranScript, tagYouTran)
	w.link(downAsrScript, tagThemAsr)
	w.link(downTranScript, tagThemTran)
	w.link(tagYouAsr.Out(), mergeAsr)
	w.link(tagThemAsr.Out(), mergeAsr)
	w.link(tagYouTran.Out(), mergeTran)
	w.link(tagThemTran.Out(), mergeTran)
	if w.err != nil {
		return nil, w.err
	}

	d.ExposeOutput("asr_script", mergeAsr)
	d.ExposeOutput("tran_script", mergeTran)

	return d, nil
}

// SetProp routes a key to the matching direction's pipeline: "up-*"/"down-*"
// prefixes select which side, the remainder is passed through unprefixed.
func (d *DualStreamPipeline) SetProp(key string, value any) error {
	switch {
	case hasPrefix(key, "up-"):
		return d.up.SetProp(key[len("up-"):], value)
	case hasPrefix(key, "down-"):
		return d.down.SetProp(key[len("down-"):], value)
	default:
		return &core.ConfigError{Key: key}
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
