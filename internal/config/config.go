package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the CLI demo's process configuration: which pipeline assembly
// to run, which audio devices/virtual devices it talks to, and which
// services the registry should build for it. Grounded on the teacher's
// internal/config/config.go struct-tag + Load/Save shape.
type Config struct {
	Pipeline PipelineConfig           `yaml:"pipeline" json:"pipeline"`
	Audio    AudioDeviceConfig        `yaml:"audio" json:"audio"`
	Services map[string]ServiceConfig `yaml:"services" json:"services"`
}

// PipelineConfig selects one of the four runnable assemblies (see Mode) and
// its languages.
type PipelineConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // downstream | upstream | dualstream | selftalk
	LocalLang  string `yaml:"local_lang" json:"local_lang"`
	RemoteLang string `yaml:"remote_lang" json:"remote_lang"`
	QueueSize  int    `yaml:"queue_size" json:"queue_size"`
	PlayerBuf  int    `yaml:"player_buffer_frames" json:"player_buffer_frames"`
}

// AudioDeviceConfig names the host devices a pipeline should open.
type AudioDeviceConfig struct {
	Rate          int    `yaml:"rate" json:"rate"`
	Channels      int    `yaml:"channels" json:"channels"`
	Blocksize     int    `yaml:"blocksize" json:"blocksize"`
	MicDevice     string `yaml:"mic_device" json:"mic_device"`
	SpeakerDevice string `yaml:"speaker_device" json:"speaker_device"`
}

// ServiceConfig names a registry factory and the settings passed to it, one
// entry per ASR/translation/TTS role (e.g. "asr", "translation", "tts").
type ServiceConfig struct {
	Provider string         `yaml:"provider" json:"provider"`
	Settings map[string]any `yaml:"settings" json:"settings"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Pipeline: PipelineConfig{
			Mode:      "selftalk",
			QueueSize: 16,
			PlayerBuf: 8192,
		},
		Audio: AudioDeviceConfig{
			Rate:      16000,
			Channels:  1,
			Blocksize: 2048,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Pipeline.LocalLang == "" {
		cfg.Pipeline.LocalLang = "en-US"
	}
	if cfg.Pipeline.RemoteLang == "" {
		cfg.Pipeline.RemoteLang = "ja-JP"
	}
	if cfg.Pipeline.QueueSize <= 0 {
		cfg.Pipeline.QueueSize = 16
	}
	if cfg.Pipeline.PlayerBuf <= 0 {
		cfg.Pipeline.PlayerBuf = 8192
	}
	if cfg.Audio.Rate <= 0 {
		cfg.Audio.Rate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.Blocksize <= 0 {
		cfg.Audio.Blocksize = 2048
	}

	// Resolve any "credentials"/"path"-style settings entries relative to
	// the config file's directory, the same way the teacher resolves
	// STT.Credentials relative to its config directory.
	configDir := filepath.Dir(path)
	for role, svc := range cfg.Services {
		if p, ok := svc.Settings["credentials_path"].(string); ok && p != "" && !filepath.IsAbs(p) {
			svc.Settings["credentials_path"] = filepath.Join(configDir, p)
			cfg.Services[role] = svc
		}
	}

	return cfg, nil
}

// Save writes the config back to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Service looks up a named service role ("asr", "translation", "tts"),
// returning false if the config doesn't configure one.
func (c *Config) Service(role string) (ServiceConfig, bool) {
	svc, ok := c.Services[role]
	return svc, ok
}
