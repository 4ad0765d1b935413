package audio

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

// CommandBuilder produces the external command (and arguments) used to
// capture from or play to a named host device at the given audio config.
// Grounded on the teacher's internal/audio/capture.go, which shells out to
// `pw-record` via os/exec.CommandContext rather than binding a native audio
// API; no complete example repo's go.mod carries a PortAudio-equivalent
// binding, so MicSource/SpeakerSink follow the same external-process shape,
// with the command itself made pluggable (default `arecord`/`aplay`).
type CommandBuilder func(device string, cfg core.AudioConfig) (bin string, args []string)

// DefaultRecorderCommand builds an `arecord` invocation streaming raw
// little-endian 16-bit PCM for the device at cfg's rate/channels.
func DefaultRecorderCommand(device string, cfg core.AudioConfig) (string, []string) {
	return "arecord", []string{
		"-D", device,
		"-f", "S16_LE",
		"-r", fmt.Sprint(cfg.Format.Rate),
		"-c", fmt.Sprint(cfg.Format.Channels),
		"-t", "raw",
	}
}

// DefaultPlayerCommand builds an `aplay` invocation consuming raw
// little-endian 16-bit PCM for the device at cfg's rate/channels.
func DefaultPlayerCommand(device string, cfg core.AudioConfig) (string, []string) {
	return "aplay", []string{
		"-D", device,
		"-f", "S16_LE",
		"-r", fmt.Sprint(cfg.Format.Rate),
		"-c", fmt.Sprint(cfg.Format.Channels),
		"-t", "raw",
		"-q",
	}
}

// Device describes one enumerated host audio device.
type Device struct {
	Name        string
	DisplayName string
	Input       bool
	Output      bool
}

// Enumerator lists host audio devices. The default implementation shells
// out to `arecord -L` / `aplay -L`, matching the teacher's
// own ListSources (`pw-cli ls Node`) approach of parsing a host tool's text
// output rather than binding a native enumeration API. Grounded on
// original_source/vpipe/utils/audio_devices.py's list_input_devices.
type Enumerator interface {
	ListInputDevices(ctx context.Context) ([]Device, error)
	ListOutputDevices(ctx context.Context) ([]Device, error)
}

// CommandEnumerator is the default Enumerator, backed by `arecord -L` and
// `aplay -L`.
type CommandEnumerator struct{}

func (CommandEnumerator) ListInputDevices(ctx context.Context) ([]Device, error) {
	return listALSADevices(ctx, "arecord", true)
}

func (CommandEnumerator) ListOutputDevices(ctx context.Context) ([]Device, error) {
	return listALSADevices(ctx, "aplay", false)
}

func listALSADevices(ctx context.Context, bin string, input bool) ([]Device, error) {
	cmd := exec.CommandContext(ctx, bin, "-L")
	out, err := cmd.Output()
	if err != nil {
		return nil, &core.DeviceError{Device: bin, Op: "enumerate", Err: err}
	}
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	var pending string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			pending = strings.TrimSpace(line)
			continue
		}
		display := strings.TrimSpace(line)
		if pending == "" || isExcludedDevice(display) {
			continue
		}
		devices = append(devices, Device{
			Name:        pending,
			DisplayName: display,
			Input:       input,
			Output:      !input,
		})
		pending = ""
	}
	return devices, scanner.Err()
}

// isExcludedDevice filters out virtual/loopback pseudo-devices that don't
// correspond to a real capture/playback endpoint, per spec §6.
func isExcludedDevice(displayName string) bool {
	lower := strings.ToLower(displayName)
	return strings.Contains(lower, "virtual audio") || strings.Contains(lower, "sound mapper")
}

// FindDevice returns the first device whose name or display name contains
// needle (case-insensitive), matching the original's find_device_index.
func FindDevice(devices []Device, needle string) (Device, bool) {
	lower := strings.ToLower(needle)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) || strings.Contains(strings.ToLower(d.DisplayName), lower) {
			return d, true
		}
	}
	return Device{}, false
}
