package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// HotConfig wraps Config with hot-reload support: editing the YAML file on
// disk reloads it and hands the new Config to every OnReload callback.
// HotConfig itself applies nothing to a running assembly; the CLI demo's
// callback re-applies only the pipeline's src-lang/dest-lang, so queue,
// audio and service settings take effect on the next start.
type HotConfig struct {
	mu   sync.RWMutex
	cfg  *Config
	path string
	subs []func(*Config)
}

func NewHotConfig(path string) (*HotConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &HotConfig{cfg: cfg, path: path}, nil
}

func (hc *HotConfig) Get() *Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.cfg
}

// OnReload registers a callback run with the newly loaded Config every time
// the watched file changes. cmd/talklink uses this to re-apply
// cfg.Pipeline.LocalLang/RemoteLang onto the running composite's
// src-lang/dest-lang properties, so editing the languages live-steers a
// running translator instead of requiring a restart.
func (hc *HotConfig) OnReload(fn func(*Config)) {
	hc.subs = append(hc.subs, fn)
}

func (hc *HotConfig) reload() {
	cfg, err := Load(hc.path)
	if err != nil {
		slog.Error("config reload failed", "path", hc.path, "err", err)
		return
	}
	hc.mu.Lock()
	old := hc.cfg
	hc.cfg = cfg
	hc.mu.Unlock()

	slog.Info("config reloaded",
		"path", hc.path,
		"mode", cfg.Pipeline.Mode,
		"local_lang_changed", old.Pipeline.LocalLang != cfg.Pipeline.LocalLang,
		"remote_lang_changed", old.Pipeline.RemoteLang != cfg.Pipeline.RemoteLang,
	)
	for _, fn := range hc.subs {
		fn(cfg)
	}
}

// Watch starts watching the config file for changes
func (hc *HotConfig) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("config watcher failed", "err", err)
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					hc.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("config watcher error", "err", err)
			}
		}
	}()

	if err := watcher.Add(hc.path); err != nil {
		slog.Error("watch config file failed", "path", hc.path, "err", err)
	}
}
