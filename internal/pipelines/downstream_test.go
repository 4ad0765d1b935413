package pipelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

func testAudioConfig() core.AudioConfig {
	return core.AudioConfig{Format: core.AudioFormat{Rate: 16000, Channels: 1, Format: core.SampleFormatInt16, SampleSize: 2}, Blocksize: 160}
}

func TestDownStreamPipeline_BuildsAndExposesScriptTaps(t *testing.T) {
	client := audio.NewInMemoryVirtualDevice(0)
	d, err := NewDownStreamPipeline("down", testAudioConfig(), client, "fake-device", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	_, ok := d.GetOutput("asr_script")
	assert.True(t, ok)
	_, ok = d.GetOutput("tran_script")
	assert.True(t, ok)

	assert.Len(t, d.Children(), 3)
}

func TestDownStreamPipeline_SetPropDelegatesToTranslator(t *testing.T) {
	client := audio.NewInMemoryVirtualDevice(0)
	d, err := NewDownStreamPipeline("down", testAudioConfig(), client, "fake-device", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	require.NoError(t, d.SetProp("src-volume", 0.75))
	assert.Equal(t, 0.75, d.translator.srcVolume.Gain())
}

func TestDownStreamPipeline_SetPropUnknownKeyErrors(t *testing.T) {
	client := audio.NewInMemoryVirtualDevice(0)
	d, err := NewDownStreamPipeline("down", testAudioConfig(), client, "fake-device", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	var cfgErr *core.ConfigError
	assert.ErrorAs(t, d.SetProp("nope", 1), &cfgErr)
}
