package pipelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

func TestSelfTalkPipeline_BuildsAndExposesScriptTaps(t *testing.T) {
	s, err := NewSelfTalkPipeline("selftalk", testAudioConfig(), "fake-mic", nil, "fake-speaker", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	_, ok := s.GetOutput("asr_script")
	assert.True(t, ok)
	_, ok = s.GetOutput("tran_script")
	assert.True(t, ok)
	assert.Len(t, s.Children(), 3)
}

func TestSelfTalkPipeline_SetPropDelegatesToTranslator(t *testing.T) {
	s, err := NewSelfTalkPipeline("selftalk", testAudioConfig(), "fake-mic", nil, "fake-speaker", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	require.NoError(t, s.SetProp("src-mute", true))
	assert.True(t, s.translator.srcVolume.Mute())
}

func TestSelfTalkPipeline_SetPropUnknownKeyErrors(t *testing.T) {
	s, err := NewSelfTalkPipeline("selftalk", testAudioConfig(), "fake-mic", nil, "fake-speaker", nil,
		"en", "fr", &fakeASRService{}, &fakeTranService{}, &fakeTTSService{}, 8, 3200)
	require.NoError(t, err)

	var cfgErr *core.ConfigError
	assert.ErrorAs(t, s.SetProp("nope", 1), &cfgErr)
}
