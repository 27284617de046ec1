// Package config loads the application configuration.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WhisperConfig selects and parameterizes the transcription engine.
type WhisperConfig struct {
	// Command is the engine command line; the audio path and model flags are
	// appended per request.
	Command     string `yaml:"command"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"` // empty = auto-detect
	VADFilter   bool   `yaml:"vad_filter"`
	ComputeType string `yaml:"compute_type"`
}

// RecordingConfig controls microphone capture.
type RecordingConfig struct {
	SampleRate     int     `yaml:"sample_rate"`
	InputDevice    string  `yaml:"input_device"` // empty = system default
	MinDurationSec float64 `yaml:"min_duration_sec"`
}

// UIConfig controls the hotkey and overlay hints.
type UIConfig struct {
	Hotkey                    string  `yaml:"hotkey"`
	HotkeyDebounceSec         float64 `yaml:"hotkey_debounce_sec"`
	OverlayOffsetFromBottomPx int     `yaml:"overlay_offset_from_bottom_px"`
}

// PathsConfig locates the log file and recording artifacts.
type PathsConfig struct {
	LogFile       string `yaml:"log_file"`
	RecordingsDir string `yaml:"recordings_dir"`
}

// Config is an immutable snapshot loaded once at startup.
type Config struct {
	Whisper   WhisperConfig   `yaml:"whisper"`
	Recording RecordingConfig `yaml:"recording"`
	UI        UIConfig        `yaml:"ui"`
	Paths     PathsConfig     `yaml:"paths"`
}

// EngineSampleRate is the rate the transcription engine expects.
const EngineSampleRate = 16000

func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".mutter")
	return Config{
		Whisper: WhisperConfig{
			Command:     "whisper-cli",
			Model:       "base",
			Language:    "",
			VADFilter:   true,
			ComputeType: "int8",
		},
		Recording: RecordingConfig{
			SampleRate:     EngineSampleRate,
			InputDevice:    "",
			MinDurationSec: 1.2,
		},
		UI: UIConfig{
			Hotkey:                    "ctrl+shift+m",
			HotkeyDebounceSec:         0.6,
			OverlayOffsetFromBottomPx: 72,
		},
		Paths: PathsConfig{
			LogFile:       filepath.Join(base, "logs", "mutter.log"),
			RecordingsDir: filepath.Join(base, "logs", "recordings"),
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".mutter", "config.yaml")
}

// Load reads the YAML file at path and merges it key-by-key over the
// defaults. A missing or unreadable file is not an error: the defaults are
// returned and the condition is logged.
func Load(path string, log *slog.Logger) Config {
	cfg := Default()
	if log == nil {
		log = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("no config file, using defaults", slog.String("path", path))
		} else {
			log.Warn("config unreadable, using defaults", slog.String("path", path), slog.String("error", err.Error()))
		}
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warn("config malformed, using defaults", slog.String("path", path), slog.String("error", err.Error()))
		return Default()
	}

	cfg.clamp(log)
	return cfg
}

// clamp replaces invalid values with their defaults. Configuration problems
// are never fatal.
func (c *Config) clamp(log *slog.Logger) {
	def := Default()
	if c.Recording.SampleRate <= 0 {
		log.Warn("recording.sample_rate invalid, using default", slog.Int("value", c.Recording.SampleRate))
		c.Recording.SampleRate = def.Recording.SampleRate
	}
	if c.Recording.MinDurationSec < 0 {
		c.Recording.MinDurationSec = def.Recording.MinDurationSec
	}
	if c.UI.HotkeyDebounceSec < 0 {
		c.UI.HotkeyDebounceSec = def.UI.HotkeyDebounceSec
	}
	if c.UI.Hotkey == "" {
		c.UI.Hotkey = def.UI.Hotkey
	}
	if c.Whisper.Command == "" {
		c.Whisper.Command = def.Whisper.Command
	}
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = def.Paths.LogFile
	}
	if c.Paths.RecordingsDir == "" {
		c.Paths.RecordingsDir = def.Paths.RecordingsDir
	}
}
