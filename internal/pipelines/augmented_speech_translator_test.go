package pipelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func newTestAugmented(t *testing.T) *AugmentedSpeechTranslator {
	t.Helper()
	cfg := core.AudioConfig{Format: core.AudioFormat{Rate: 16000, Channels: 1, Format: core.SampleFormatInt16, SampleSize: 2}, Blocksize: 160}
	a, err := NewAugmentedSpeechTranslator("aug", cfg, "en", "fr",
		&fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)
	return a
}

func TestAugmentedSpeechTranslator_ExposesPortsAndScriptTaps(t *testing.T) {
	a := newTestAugmented(t)

	_, ok := a.GetInput("in")
	assert.True(t, ok)
	_, ok = a.GetOutput("out")
	assert.True(t, ok)
	_, ok = a.GetOutput("asr_script")
	assert.True(t, ok)
	_, ok = a.GetOutput("tran_script")
	assert.True(t, ok)
}

func TestAugmentedSpeechTranslator_SetPropHandlesVolumeAndMute(t *testing.T) {
	a := newTestAugmented(t)

	require.NoError(t, a.SetProp("src-volume", 0.5))
	assert.Equal(t, 0.5, a.srcVolume.Gain())

	require.NoError(t, a.SetProp("tts-volume", 0.25))
	assert.Equal(t, 0.25, a.ttsVolume.Gain())

	require.NoError(t, a.SetProp("src-mute", true))
	assert.True(t, a.srcVolume.Mute())

	require.NoError(t, a.SetProp("tts-mute", true))
	assert.True(t, a.ttsVolume.Mute())
}

func TestAugmentedSpeechTranslator_SetPropRejectsWrongType(t *testing.T) {
	a := newTestAugmented(t)
	err := a.SetProp("src-volume", "not-a-float")
	var cfgErr *core.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestAugmentedSpeechTranslator_SetPropDelegatesToInnerTranslator(t *testing.T) {
	a := newTestAugmented(t)
	require.NoError(t, a.SetProp("src-lang", "ja"))
	require.NoError(t, a.SetProp("dest-lang", "ja"))
	require.NoError(t, a.SetProp("asr-enable", false))
}

func TestAugmentedSpeechTranslator_SetPropTtsEnableMutesMixerAndDelegates(t *testing.T) {
	a := newTestAugmented(t)
	require.NoError(t, a.SetProp("tts-enable", false))
	assert.True(t, a.ttsVolume.Mute())
}

func TestAugmentedSpeechTranslator_SetPropTtsSpeedSetsPlayerSpeed(t *testing.T) {
	a := newTestAugmented(t)
	require.NoError(t, a.SetProp("tts-speed", 1.5))
}

func TestAugmentedSpeechTranslator_SetPropTtsSpeedRejectsWrongType(t *testing.T) {
	a := newTestAugmented(t)
	err := a.SetProp("tts-speed", "fast")
	var cfgErr *core.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
