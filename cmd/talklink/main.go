package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/duynv223/talklink/internal/config"
	"github.com/duynv223/talklink/internal/pipelines"
	"github.com/duynv223/talklink/internal/providers/echotranslate"
	"github.com/duynv223/talklink/internal/providers/toneshifttts"
	"github.com/duynv223/talklink/internal/providers/wsasr"
	"github.com/duynv223/talklink/internal/transcript"
	"github.com/duynv223/talklink/internal/vpipe/capsules/audio"
	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
	"github.com/duynv223/talklink/internal/vpipe/registry"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  talklink run [config]     Start a pipeline assembly")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cfgPath := "config.yaml"
		if len(os.Args) > 2 {
			cfgPath = os.Args[2]
		}
		if err := run(cfgPath); err != nil {
			slog.Error("run failed", "err", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	hotCfg, err := config.NewHotConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := hotCfg.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	reg := buildRegistry(cfg)

	audioCfg := core.AudioConfig{
		Format: core.AudioFormat{
			Rate:       cfg.Audio.Rate,
			Channels:   cfg.Audio.Channels,
			Format:     core.SampleFormatInt16,
			SampleSize: 2,
		},
		Blocksize: cfg.Audio.Blocksize,
	}

	var root core.Capsule
	var asrScript, tranScript *core.Port

	switch cfg.Pipeline.Mode {
	case "selftalk":
		p, err := pipelines.NewSelfTalkPipeline(
			"selftalk", audioCfg,
			cfg.Audio.MicDevice, audio.DefaultRecorderCommand,
			cfg.Audio.SpeakerDevice, audio.DefaultPlayerCommand,
			cfg.Pipeline.LocalLang, cfg.Pipeline.RemoteLang,
			mustBuildASR(reg), mustBuildTranslation(reg), mustBuildTTS(reg),
			cfg.Pipeline.QueueSize, cfg.Pipeline.PlayerBuf,
		)
		if err != nil {
			return fmt.Errorf("build selftalk pipeline: %w", err)
		}
		root = p
		asrScript, _ = p.GetOutput("asr_script")
		tranScript, _ = p.GetOutput("tran_script")
	case "upstream":
		client := audio.NewInMemoryVirtualDevice(1 << 20)
		p, err := pipelines.NewUpStreamPipeline(
			"upstream", audioCfg,
			cfg.Audio.MicDevice, audio.DefaultRecorderCommand, client,
			cfg.Pipeline.LocalLang, cfg.Pipeline.RemoteLang,
			mustBuildASR(reg), mustBuildTranslation(reg), mustBuildTTS(reg),
			cfg.Pipeline.QueueSize, cfg.Pipeline.PlayerBuf,
		)
		if err != nil {
			return fmt.Errorf("build upstream pipeline: %w", err)
		}
		root = p
		asrScript, _ = p.GetOutput("asr_script")
		tranScript, _ = p.GetOutput("tran_script")
	case "downstream":
		client := audio.NewInMemoryVirtualDevice(1 << 20)
		p, err := pipelines.NewDownStreamPipeline(
			"downstream", audioCfg, client,
			cfg.Audio.SpeakerDevice, audio.DefaultPlayerCommand,
			cfg.Pipeline.RemoteLang, cfg.Pipeline.LocalLang,
			mustBuildASR(reg), mustBuildTranslation(reg), mustBuildTTS(reg),
			cfg.Pipeline.QueueSize, cfg.Pipeline.PlayerBuf,
		)
		if err != nil {
			return fmt.Errorf("build downstream pipeline: %w", err)
		}
		root = p
		asrScript, _ = p.GetOutput("asr_script")
		tranScript, _ = p.GetOutput("tran_script")
	case "dualstream":
		micClient := audio.NewInMemoryVirtualDevice(1 << 20)
		speakerClient := audio.NewInMemoryVirtualDevice(1 << 20)
		p, err := pipelines.NewDualStreamPipeline(
			"dualstream", audioCfg,
			cfg.Audio.MicDevice, audio.DefaultRecorderCommand,
			cfg.Audio.SpeakerDevice, audio.DefaultPlayerCommand,
			micClient, speakerClient,
			cfg.Pipeline.LocalLang, cfg.Pipeline.RemoteLang,
			mustBuildASR(reg), mustBuildTranslation(reg), mustBuildTTS(reg),
			mustBuildASR(reg), mustBuildTranslation(reg), mustBuildTTS(reg),
			cfg.Pipeline.QueueSize, cfg.Pipeline.PlayerBuf,
		)
		if err != nil {
			return fmt.Errorf("build dualstream pipeline: %w", err)
		}
		root = p
		asrScript, _ = p.GetOutput("asr_script")
		tranScript, _ = p.GetOutput("tran_script")
	default:
		return fmt.Errorf("unknown pipeline mode %q", cfg.Pipeline.Mode)
	}

	transcriptDir := filepath.Join(filepath.Dir(cfgPath), "transcripts")
	tw, err := transcript.NewWriter(transcriptDir, cfg.Pipeline.Mode)
	if err != nil {
		return fmt.Errorf("init transcript writer: %w", err)
	}
	defer tw.Close()
	if asrScript != nil {
		tw.Attach(asrScript)
	}
	if tranScript != nil {
		tw.Attach(tranScript)
	}

	hotCfg.OnReload(func(newCfg *config.Config) {
		applyPipelineConfig(root, newCfg)
	})
	hotCfg.Watch()

	if err := core.SetState(ctx, root, core.StateRunning); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	slog.Info("pipeline running", "mode", cfg.Pipeline.Mode, "transcript", tw.Path())

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), core.DefaultAudioConfig.BlockDuration()*10)
	defer stopCancel()
	if err := core.SetState(stopCtx, root, core.StateNull); err != nil {
		slog.Error("stop pipeline", "err", err)
	}
	return nil
}

// propSetter is satisfied by every pipeline assembly's SetProp, letting a
// config reload re-steer a running composite's languages without
// rebuilding it.
type propSetter interface {
	SetProp(key string, value any) error
}

// applyPipelineConfig re-applies cfg.Pipeline's languages onto the running
// root pipeline after a hot-reload, direction-mapped the same way run()
// wired them at construction time (downstream recognizes the remote side
// and translates to local; dualstream runs both directions at once).
func applyPipelineConfig(root core.Capsule, cfg *config.Config) {
	setter, ok := root.(propSetter)
	if !ok {
		return
	}

	set := func(key, value string) {
		if err := setter.SetProp(key, value); err != nil {
			slog.Warn("reload: set prop failed", "key", key, "err", err)
		}
	}

	switch cfg.Pipeline.Mode {
	case "dualstream":
		set("up-src-lang", cfg.Pipeline.LocalLang)
		set("up-dest-lang", cfg.Pipeline.RemoteLang)
		set("down-src-lang", cfg.Pipeline.RemoteLang)
		set("down-dest-lang", cfg.Pipeline.LocalLang)
	case "downstream":
		set("src-lang", cfg.Pipeline.RemoteLang)
		set("dest-lang", cfg.Pipeline.LocalLang)
	default: // selftalk, upstream
		set("src-lang", cfg.Pipeline.LocalLang)
		set("dest-lang", cfg.Pipeline.RemoteLang)
	}
}

func buildRegistry(cfg *config.Config) *registry.Registry {
	reg := registry.New()

	asrSettings := map[string]any{}
	tranSettings := map[string]any{}
	ttsSettings := map[string]any{}
	if svc, ok := cfg.Service("asr"); ok {
		asrSettings = svc.Settings
	}
	if svc, ok := cfg.Service("translation"); ok {
		tranSettings = svc.Settings
	}
	if svc, ok := cfg.Service("tts"); ok {
		ttsSettings = svc.Settings
	}

	reg.Register("asr", "websocket", func(settings map[string]any) (any, error) {
		url, _ := settings["url"].(string)
		if url == "" {
			url = "ws://127.0.0.1:8700/asr"
		}
		return wsasr.New(url), nil
	}, asrSettings)

	reg.Register("translation", "echo", func(settings map[string]any) (any, error) {
		return echotranslate.New(nil), nil
	}, tranSettings)

	reg.Register("tts", "toneshift", func(settings map[string]any) (any, error) {
		return toneshifttts.New(cfg.Audio.Rate, cfg.Audio.Channels), nil
	}, ttsSettings)

	return reg
}

func mustBuildASR(reg *registry.Registry) services.ASRService {
	v, err := reg.Build("asr", "websocket")
	if err != nil {
		slog.Error("build asr service", "err", err)
		os.Exit(1)
	}
	return v.(services.ASRService)
}

func mustBuildTranslation(reg *registry.Registry) services.TranslationService {
	v, err := reg.Build("translation", "echo")
	if err != nil {
		slog.Error("build translation service", "err", err)
		os.Exit(1)
	}
	return v.(services.TranslationService)
}

func mustBuildTTS(reg *registry.Registry) services.TTSService {
	v, err := reg.Build("tts", "toneshift")
	if err != nil {
		slog.Error("build tts service", "err", err)
		os.Exit(1)
	}
	return v.(services.TTSService)
}
